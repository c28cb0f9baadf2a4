package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RowanDark/strintern"
	"github.com/RowanDark/strintern/config"
	"github.com/RowanDark/strintern/snapshot"
)

func newResolveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve --snapshot PATH SYMBOL...",
		Short: "Print the string behind each symbol of a snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadSnapshot(cfg, cmd)
			if err != nil {
				return err
			}

			var missing []string
			for _, arg := range args {
				value, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
				if err != nil {
					missing = append(missing, arg)
					continue
				}
				text, ok := table.Resolve(symbolID(value))
				if !ok {
					missing = append(missing, arg)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			if len(missing) > 0 {
				return fmt.Errorf("unknown symbol(s): %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func newLookupCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup --snapshot PATH TEXT...",
		Short: "Print the symbol of each string in a snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadSnapshot(cfg, cmd)
			if err != nil {
				return err
			}

			var missing []string
			for _, arg := range args {
				sym, ok := table.Get(arg)
				if !ok {
					missing = append(missing, strconv.Quote(arg))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), sym)
			}
			if len(missing) > 0 {
				return fmt.Errorf("value(s) not interned: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func loadSnapshot(cfg *config.Config, cmd *cobra.Command) (*strintern.StringInterner[symbolID], error) {
	if err := config.ApplyProfile(cfg, cmd); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SnapshotPath == "" {
		return nil, errors.New("--snapshot is required")
	}
	return snapshot.Load[symbolID](cfg.SnapshotPath, internerOptions(cfg)...)
}
