// Package app is the readshelf command tree.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/config"
	"github.com/blackwell-systems/readshelf/internal/logging"
	"github.com/blackwell-systems/readshelf/internal/usage"
	"github.com/blackwell-systems/readshelf/internal/util"
)

var (
	cfg      *config.Config
	log      zerolog.Logger
	lib      *catalog.Library
	reporter *usage.Reporter
	closeEnv func() error

	flagNoColor   bool
	flagConfig    string
	flagEphemeral bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "readshelf",
		Short: "Keep a personal library of PDF, EPUB and comic files",
		Long: `readshelf stores uploaded books, estimates or reads their page counts,
renders pages on demand and remembers where you stopped reading.

Book records live in one snapshot. Raw files and rendered pages live in a
blob store: a directory, a sqlite database or an S3-compatible bucket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/readshelf/config.yml)")
	root.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep everything in memory for this run")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor, cmd.OutOrStdout())
		switch cmd.Name() {
		case "version", "init", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return nil
		}

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagEphemeral {
			cfg.Storage.Backend = config.BackendMemory
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		log, err = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		e, err := openEnv(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		lib, reporter, closeEnv = e.lib, e.reporter, e.close
		return nil
	}

	root.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newListCmd(),
		newInfoCmd(),
		newSearchCmd(),
		newProgressCmd(),
		newReadCmd(),
		newDeleteCmd(),
		newTagCmd(),
		newUsageCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := execute(context.Background(), newRootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// execute runs root and releases whatever the command opened, whether or
// not it succeeded.
func execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if closeEnv != nil {
		err = errors.Join(err, closeEnv())
		closeEnv = nil
	}
	return err
}

// ok prints a green success line.
func ok(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// failed prints a red error line.
func failed(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.RedString("✗"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}
