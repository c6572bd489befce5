// Package cli implements the hostbind command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ardanlabs/hostbind/bind"
	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/logger"
	"github.com/ardanlabs/hostbind/parser"
	"github.com/ardanlabs/hostbind/policy"
)

// ErrDiagnostics is returned in strict mode when a run reported
// diagnostics.
var ErrDiagnostics = errors.New("diagnostics reported")

type options struct {
	headers  []string
	config   string
	module   string
	workers  int
	jsonLogs bool
	verbose  bool
	strict   bool

	// log replaces the flag-configured logger when set.
	log *zap.SugaredLogger
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "hostbind",
		Short: "Decide how C++ declarations are published to a dynamic host language",
		Long: `hostbind reads C++ headers, applies a binding policy and decides, for
every declaration, whether and how it is exposed to the host language.

Examples:
  hostbind plan --header include/geo.h              # Print the binding manifest
  hostbind generate -H a.h -H b.h --output build/   # Write manifest and stubs
  hostbind generate -H geo.h --config policy.yaml   # Use a policy file`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringSliceVarP(&opts.headers, "header", "H", nil, "Header to bind (repeatable)")
	flags.StringVarP(&opts.config, "config", "c", "", "Policy file (.yaml, .toml or .json)")
	flags.StringVarP(&opts.module, "module", "m", "", "Host module name (default: first header's base name)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Concurrent synthesis workers (default: GOMAXPROCS)")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "Emit JSON logs")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.strict, "strict", false, "Fail when any declaration is excluded with a diagnostic")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newPlanCmd(opts))

	return root
}

// Execute runs the command line against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// headerList merges --header values with positional arguments.
func (o *options) headerList(args []string) ([]string, error) {
	headers := append(append([]string{}, o.headers...), args...)
	if len(headers) == 0 {
		return nil, errors.WithHint(errors.New("no headers given"), "pass one or more --header flags")
	}

	return headers, nil
}

func (o *options) moduleName(headers []string) string {
	if o.module != "" {
		return o.module
	}

	base := filepath.Base(headers[0])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// bindHeaders parses every header concurrently and runs the binding
// engine over the resulting units.
func (o *options) bindHeaders(ctx context.Context, headers []string, log *zap.SugaredLogger) (*bind.Result, error) {
	cfg, err := policy.LoadFile(o.config)
	if err != nil {
		return nil, err
	}

	p, err := cfg.Compile()
	if err != nil {
		return nil, err
	}

	units := make([]decl.Unit, len(headers))

	g, gCtx := errgroup.WithContext(ctx)
	for i, path := range headers {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			unit, err := parser.ParseFile(path, parser.Options{APIMarkers: cfg.APIMarkers})
			if err != nil {
				return err
			}
			log.Debugw("parsed header", "file", path, "decls", len(unit.Decls))

			units[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return bind.New(p, bind.WithWorkers(o.workers), bind.WithLogger(log)).Run(ctx, units)
}

func (o *options) newLogger() (*zap.SugaredLogger, error) {
	if o.log != nil {
		return o.log, nil
	}

	log, err := logger.New(o.jsonLogs, o.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}

	return log, nil
}

// report prints diagnostics and applies strict mode.
func (o *options) report(w io.Writer, res *bind.Result) error {
	for _, d := range res.Diagnostics {
		fmt.Fprintln(w, d.String())
	}

	if o.strict && !res.Clean() {
		return errors.Wrapf(ErrDiagnostics, "%d declarations excluded", len(res.Diagnostics))
	}

	return nil
}
