package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RowanDark/strintern/config"
	"github.com/RowanDark/strintern/logging"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   "strintern [flags] [input...]",
		Short: "strintern assigns dense integer symbols to distinct strings.",
		Long: `strintern reads newline-delimited values or zone file owner names, interns
every distinct value and prints the resulting symbol table. Tables can be
saved as snapshots and compared against earlier runs.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, err := cmd.Flags().GetBool("version")
			if err != nil {
				return err
			}
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "strintern version: %s\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
				fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := setup(cfg, cmd)
			if err != nil {
				return err
			}
			defer logger.Close()

			previousGC := debug.SetGCPercent(cfg.GCPercent)
			defer debug.SetGCPercent(previousGC)

			sources := append(append([]string(nil), cfg.Inputs...), args...)
			if len(sources) == 0 {
				if stdinIsTerminal(cmd.InOrStdin()) {
					logger.Warnf("No input specified. Pass input files or pipe values via stdin.")
					return cmd.Help()
				}
				sources = []string{"-"}
			}

			return run(ctx, cfg, logger, cmd.InOrStdin(), sources)
		},
	}

	cfg = config.BindFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("version", "V", false, "Show strintern version information and exit")
	rootCmd.AddCommand(newResolveCmd(cfg), newLookupCmd(cfg))
	return rootCmd
}

// setup applies the configuration profile, validates cfg and opens the logger.
func setup(cfg *config.Config, cmd *cobra.Command) (*logging.Logger, error) {
	if err := config.ApplyProfile(cfg, cmd); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	levelName := cfg.LogLevel
	if cfg.Verbose && !cmd.Flags().Changed("log-level") {
		levelName = "debug"
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	console := cmd.ErrOrStderr()
	if cfg.Silent {
		console = io.Discard
	}

	logger, err := logging.New(logging.Options{Level: level, Console: console, FilePath: cfg.LogFile})
	if err != nil {
		return nil, err
	}
	if cfg.LogFile != "" {
		logger.Infof("File logging enabled: %s", cfg.LogFile)
	}
	return logger, nil
}

func stdinIsTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !strings.HasSuffix(err.Error(), "help requested") {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
