package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"library-catalog/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type options struct {
	store         string
	timestamps    bool
	strictReturns bool
	verbose       bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "library-catalog",
		Short:         "Menu-driven library catalog: books, members, issues and returns",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			echo := !term.IsTerminal(int(os.Stdin.Fd()))
			return run(opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), echo)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.store, "store", library.BackendMemDB, "in-memory store backend: memdb or sqlite")
	flags.BoolVar(&opts.timestamps, "timestamps", false, "show the date of each transaction in the history")
	flags.BoolVar(&opts.strictReturns, "strict-returns", false, "only accept returns of books issued to the member")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")
	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(opts options, in io.Reader, out, errOut io.Writer, echo bool) error {
	logger := newLogger(errOut, opts.verbose)

	store, err := library.OpenStore(opts.store)
	if err != nil {
		return err
	}

	catalogOpts := []library.Option{library.WithLogger(logger)}
	if opts.strictReturns {
		catalogOpts = append(catalogOpts, library.WithStrictReturns())
	}
	catalog := library.NewCatalog(store, catalogOpts...)
	defer catalog.Close()

	if err := library.Seed(catalog); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Debug("catalog ready", "store", opts.store)

	m := &menu{
		sc:         bufio.NewScanner(in),
		out:        out,
		catalog:    catalog,
		logger:     logger,
		timestamps: opts.timestamps,
		echo:       echo,
	}
	m.loop()
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
