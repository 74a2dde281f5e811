package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/leetgrade/internal/config"
	"github.com/dshills/leetgrade/internal/history"
	"github.com/dshills/leetgrade/internal/render"
	"github.com/dshills/leetgrade/internal/report"
)

type historyFlags struct {
	path   string
	id     string
	limit  int
	format string
}

func newHistoryCmd() *cobra.Command {
	return historyCommand(&historyFlags{})
}

func historyCommand(f *historyFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recent analyses, or show one by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("history") {
				cfg, err := config.Load()
				if err != nil {
					return exitError(3, "invalid configuration: %v", err)
				}
				f.path = cfg.DBPath
			}
			if len(args) == 1 {
				f.id = args[0]
			}
			return runHistory(cmd.Context(), f, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.path, "history", "", "History file (default: $LEETGRADE_DB)")
	flags.IntVar(&f.limit, "limit", history.DefaultLimit, "Maximum entries to show")
	flags.StringVar(&f.format, "format", "text", "Output format: text or json")

	return cmd
}

func runHistory(ctx context.Context, f *historyFlags, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.path == "" {
		return exitError(3, "no history file: set --history or LEETGRADE_DB")
	}
	if f.format != "text" && f.format != "json" {
		return exitError(3, "unknown format: %s", f.format)
	}
	// Listing never creates the file.
	if _, err := os.Stat(f.path); err != nil {
		return exitError(3, "no history at %s: %v", f.path, err)
	}

	store, err := history.Open(ctx, f.path)
	if err != nil {
		return exitError(3, "failed to open history: %v", err)
	}
	defer store.Close()

	if f.id != "" {
		return showReport(ctx, store, f, w)
	}

	reports, err := store.List(ctx, f.limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if f.format == "json" {
		if reports == nil {
			reports = []*report.Report{}
		}
		return writeJSON(w, reports)
	}
	_, err = fmt.Fprint(w, render.History(reports, render.DefaultTheme()))
	return err
}

func showReport(ctx context.Context, store *history.Store, f *historyFlags, w io.Writer) error {
	rep, err := store.Get(ctx, f.id)
	if errors.Is(err, history.ErrNotFound) {
		return exitError(3, "no report with ID %s", f.id)
	}
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	if f.format == "json" {
		return writeJSON(w, rep)
	}
	_, err = fmt.Fprint(w, render.Text(rep, render.DefaultTheme()))
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
