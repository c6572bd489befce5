package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardanlabs/hostbind/generator"
)

func newPlanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [headers...]",
		Short: "Print the binding manifest to stdout",
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

			module := opts.moduleName(headers)
			files, err := generator.New(module, generator.NewManifest(module)).Generate(res)
			if err != nil {
				return err
			}

			for _, name := range generator.Files(files) {
				fmt.Fprint(cmd.OutOrStdout(), files[name])
			}

			return opts.report(cmd.ErrOrStderr(), res)
		},
	}
}
