package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/leetgrade/internal/config"
	"github.com/dshills/leetgrade/internal/grader"
	"github.com/dshills/leetgrade/internal/history"
	"github.com/dshills/leetgrade/internal/llm"
	"github.com/dshills/leetgrade/internal/logging"
	"github.com/dshills/leetgrade/internal/prompt"
	"github.com/dshills/leetgrade/internal/render"
	"github.com/dshills/leetgrade/internal/report"
	"github.com/dshills/leetgrade/internal/rubric"
	"github.com/dshills/leetgrade/internal/submission"
)

const debugPromptFile = "leetgrade-debug-prompt.txt"

type analyzeFlags struct {
	question      string
	answer        string
	questionFile  string
	answerFile    string
	format        string
	out           string
	useLLM        bool
	model         string
	rubricName    string
	maxTokens     int
	temperature   float64
	seed          int
	hasSeed       bool
	redactEnabled bool
	historyPath   string
	failOn        string
	timeout       time.Duration
	logLevel      string
	verbose       bool
	debug         bool

	// Set by tests.
	stdin    io.Reader
	stdout   io.Writer
	provider llm.Provider
	now      func() time.Time
}

func newAnalyzeCmd() *cobra.Command {
	return analyzeCommand(&analyzeFlags{})
}

func analyzeCommand(f *analyzeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score an answer against its question",
		Long: `Score an answer with the logic, efficiency and readability heuristics.
With --llm the answer is also graded by a model using a rubric.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyEnv(cmd, f)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.hasSeed = cmd.Flags().Changed("seed")
			f.stdin = cmd.InOrStdin()
			f.stdout = cmd.OutOrStdout()
			return runAnalyze(cmd.Context(), f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.question, "question", "", "Question text")
	flags.StringVar(&f.answer, "answer", "", "Answer text")
	flags.StringVar(&f.questionFile, "question-file", "", "Read the question from a file (- for stdin)")
	flags.StringVar(&f.answerFile, "answer-file", "", "Read the answer from a file (- for stdin)")
	flags.StringVar(&f.format, "format", "json", "Output format: json, md or text")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.BoolVar(&f.useLLM, "llm", false, "Also request a rubric grade from a model")
	flags.StringVar(&f.model, "model", "", "Model ID (e.g., gpt-4o-mini, claude-sonnet-4-6, gemini-2.0-flash)")
	flags.StringVar(&f.rubricName, "rubric", rubric.DefaultName, "Rubric name")
	flags.IntVar(&f.maxTokens, "max-tokens", 1024, "Max response tokens")
	flags.Float64Var(&f.temperature, "temperature", 0.2, "Model temperature")
	flags.IntVar(&f.seed, "seed", 0, "Random seed (if supported)")
	flags.BoolVar(&f.redactEnabled, "redact", true, "Redact secrets before sending to model")
	flags.StringVar(&f.historyPath, "history", "", "Record the result in this history file")
	flags.StringVar(&f.failOn, "fail-on", "", "Exit 2 if the rating is at or below this level: weak or fair")
	flags.DurationVar(&f.timeout, "timeout", 60*time.Second, "Model call timeout")
	flags.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&f.verbose, "verbose", false, "Print processing steps to stderr (same as --log-level debug)")
	flags.BoolVar(&f.debug, "debug", false, "Save prompt to debug file")

	return cmd
}

// applyEnv fills flags the user did not set from LEETGRADE_* variables.
func applyEnv(cmd *cobra.Command, f *analyzeFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return exitError(3, "invalid configuration: %v", err)
	}
	changed := cmd.Flags().Changed
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

func runAnalyze(ctx context.Context, f *analyzeFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.SetDefaultCLILogger(logLevel(f.logLevel, f.verbose))

	var threshold report.Rating
	if f.failOn != "" {
		r, ok := report.ParseRating(f.failOn)
		if !ok || r == report.RatingStrong {
			return exitError(3, "invalid --fail-on %q (want weak or fair)", f.failOn)
		}
		threshold = r
	}
	switch f.format {
	case "json", "md", "text":
	default:
		return exitError(3, "unknown format: %s", f.format)
	}

	// 1. Load inputs
	if f.questionFile == submission.StdinPath && f.answerFile == submission.StdinPath {
		return exitError(3, "only one of --question-file and --answer-file may read stdin")
	}
	stdin := f.stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	q, err := submission.Resolve("question", f.question, f.questionFile, stdin)
	if err != nil {
		return exitError(3, "failed to load question: %v", err)
	}
	a, err := submission.Resolve("answer", f.answer, f.answerFile, stdin)
	if err != nil {
		return exitError(3, "failed to load answer: %v", err)
	}
	log.Debug("loaded inputs", "question", q.Source, "answer", a.Source)

	// 2. Score
	rep := report.Analyzer{Now: f.now, Version: version}.Analyze(q.Raw, a.Raw)
	rep.Input.QuestionSource = q.Source
	rep.Input.AnswerSource = a.Source
	log.Debug("heuristic scores", "logic", rep.Logic, "efficiency", rep.Efficiency, "readability", rep.Readability)

	// 3. Model grade
	if f.useLLM {
		if err := gradeReport(ctx, f, log, rep, q, a); err != nil {
			return err
		}
	}

	// 4. History
	if f.historyPath != "" {
		if err := saveHistory(ctx, f.historyPath, rep); err != nil {
			return err
		}
		log.Debug("recorded in history", "path", f.historyPath, "id", rep.ID)
	}

	// 5. Output
	var output string
	switch f.format {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		output = string(data) + "\n"
	case "md":
		output = render.Markdown(rep)
	case "text":
		output = render.Text(rep, render.DefaultTheme())
	}

	if f.out != "" {
		log.Debug("writing output", "path", f.out)
		if err := os.WriteFile(f.out, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		stdout := f.stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		fmt.Fprint(stdout, output)
	}

	// 6. Exit code based on --fail-on
	if threshold != "" && rep.Summary.Rating.AtOrBelow(threshold) {
		return exitError(2, "rating %s meets fail threshold %s", rep.Summary.Rating, threshold)
	}
	return nil
}

func gradeReport(ctx context.Context, f *analyzeFlags, log *slog.Logger, rep *report.Report, q, a *submission.Text) error {
	log.Debug("loading rubric", "name", f.rubricName)
	rub, err := rubric.LoadBuiltin(f.rubricName)
	if err != nil {
		return exitError(3, "failed to load rubric: %v", err)
	}

	provider := f.provider
	if provider == nil {
		keys, err := llm.LoadKeys()
		if err != nil {
			return exitError(3, "invalid configuration: %v", err)
		}
		p, err := llm.ResolveProvider(ctx, f.model, keys)
		if err != nil {
			return exitError(4, "model provider error: %v", err)
		}
		provider = llm.WithRetry(p, llm.DefaultRetry)
	}
	log.Debug("using provider", "name", provider.Name())

	settings := llm.Settings{
		Model:       f.model,
		Temperature: f.temperature,
		MaxTokens:   f.maxTokens,
	}
	if f.hasSeed {
		settings.Seed = &f.seed
	}

	g := &grader.Grader{
		Provider: provider,
		Rubric:   rub,
		Settings: settings,
		Redact:   f.redactEnabled,
		Logger:   log,
	}
	if f.debug {
		g.OnPrompt = func(p string) {
			log.Debug("writing debug prompt", "path", debugPromptFile)
			if err := os.WriteFile(debugPromptFile, []byte(debugPrompt(p)), 0o600); err != nil {
				log.Warn("failed to write debug prompt", "error", err)
			}
		}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	res, err := g.Grade(ctx, q, a)
	if err != nil {
		var pe *grader.ProviderError
		var vf *grader.ValidationFailedError
		switch {
		case errors.As(err, &pe):
			return exitError(4, "%v", err)
		case errors.As(err, &vf):
			fmt.Fprintln(os.Stderr, "Schema validation errors after repair:")
			for _, e := range vf.Errors {
				fmt.Fprintf(os.Stderr, "  %s\n", e)
			}
			return exitError(5, "LLM output failed schema validation after repair")
		}
		return err
	}
	if res.Repaired {
		log.Debug("model output repaired")
	}

	rep.Grade = res.Grade
	rep.Meta = res.Meta
	rep.Input.Rubric = rub.Name
	return nil
}

// debugPrompt prefixes the user prompt with the system role.
func debugPrompt(user string) string {
	var b strings.Builder
	b.WriteString("# system\n")
	b.WriteString(prompt.System)
	b.WriteString("\n\n# user\n")
	b.WriteString(user)
	return b.String()
}

func saveHistory(ctx context.Context, path string, rep *report.Report) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return exitError(3, "failed to open history: %v", err)
	}
	defer store.Close()
	if err := store.Save(ctx, rep); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}
