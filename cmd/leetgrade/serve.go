package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/leetgrade/internal/config"
	"github.com/dshills/leetgrade/internal/grader"
	"github.com/dshills/leetgrade/internal/history"
	"github.com/dshills/leetgrade/internal/llm"
	"github.com/dshills/leetgrade/internal/logging"
	"github.com/dshills/leetgrade/internal/rubric"
	"github.com/dshills/leetgrade/internal/server"
)

type serveFlags struct {
	addr          string
	historyPath   string
	model         string
	rubricName    string
	temperature   float64
	maxTokens     int
	timeout       time.Duration
	redactEnabled bool
	logLevel      string
	verbose       bool
}

func newServeCmd() *cobra.Command {
	return serveCommand(&serveFlags{})
}

func serveCommand(f *serveFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local web form and JSON API",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyServeEnv(cmd, f)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.addr, "addr", "127.0.0.1:8080", "Listen address")
	flags.StringVar(&f.historyPath, "history", "", "Record analyses in this history file")
	flags.StringVar(&f.model, "model", "", "Model ID for /api/grade")
	flags.StringVar(&f.rubricName, "rubric", rubric.DefaultName, "Rubric name for /api/grade")
	flags.Float64Var(&f.temperature, "temperature", 0.2, "Model temperature")
	flags.IntVar(&f.maxTokens, "max-tokens", 1024, "Max response tokens")
	flags.DurationVar(&f.timeout, "timeout", 60*time.Second, "Model call timeout")
	flags.BoolVar(&f.redactEnabled, "redact", true, "Redact secrets before sending to model")
	flags.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&f.verbose, "verbose", false, "Log requests and model calls to stderr (same as --log-level debug)")

	return cmd
}

// applyServeEnv fills flags the user did not set from LEETGRADE_* variables.
func applyServeEnv(cmd *cobra.Command, f *serveFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return exitError(3, "invalid configuration: %v", err)
	}
	changed := cmd.Flags().Changed
	if !changed("addr") {
		f.addr = cfg.Addr
	}
	if !changed("history") {
		f.historyPath = cfg.DBPath
	}
	if !changed("model") {
		f.model = cfg.Model
	}
	if !changed("rubric") {
		f.rubricName = cfg.Rubric
	}
	if !changed("timeout") {
		f.timeout = cfg.Timeout
	}
	if !changed("log-level") {
		f.logLevel = cfg.LogLevel
	}
	if !changed("verbose") && cfg.Debug {
		f.verbose = true
	}
	return nil
}

func runServe(ctx context.Context, f *serveFlags) error {
	log := logging.SetDefaultCLILogger(logLevel(f.logLevel, f.verbose))

	rub, err := rubric.LoadBuiltin(f.rubricName)
	if err != nil {
		return exitError(3, "failed to load rubric: %v", err)
	}

	opts := server.Options{
		Version: version,
		Rubric:  rub.Name,
		Timeout: f.timeout,
		Logger:  log.WithGroup("server"),
	}

	keys, err := llm.LoadKeys()
	if err != nil {
		return exitError(3, "invalid configuration: %v", err)
	}
	if p, err := llm.ResolveProvider(ctx, f.model, keys); err != nil {
		log.Warn("grading disabled", "reason", err)
	} else {
		log.Info("grading enabled", "provider", p.Name())
		opts.Grader = &grader.Grader{
			Provider: llm.WithRetry(p, llm.DefaultRetry),
			Rubric:   rub,
			Settings: llm.Settings{Model: f.model, Temperature: f.temperature, MaxTokens: f.maxTokens},
			Redact:   f.redactEnabled,
			Logger:   log,
		}
	}

	if f.historyPath != "" {
		store, err := history.Open(ctx, f.historyPath)
		if err != nil {
			return exitError(3, "failed to open history: %v", err)
		}
		defer store.Close()
		opts.Store = store
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(opts).ListenAndServe(ctx, f.addr); err != nil {
		return exitError(1, "server error: %v", err)
	}
	return nil
}
