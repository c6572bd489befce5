package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ardanlabs/hostbind/generator"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate [headers...]",
		Short: "Write the binding manifest and interface stubs",
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := opts.headerList(args)
			if err != nil {
				return err
			}

			log, err := opts.newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			res, err := opts.bindHeaders(cmd.Context(), headers, log)
			if err != nil {
				return err
			}

			files, err := generator.New(opts.moduleName(headers)).Generate(res)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(output, 0755); err != nil {
				return errors.Wrap(err, "create output directory")
			}

			for _, name := range generator.Files(files) {
				path := filepath.Join(output, name)
				if err := os.WriteFile(path, []byte(files[name]), 0644); err != nil {
					return errors.Wrapf(err, "write %s", path)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated: %s\n", path)
			}

			return opts.report(cmd.ErrOrStderr(), res)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "Output directory")

	return cmd
}
