package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/leetgrade/internal/logging"
)

var version = "0.1.0"

func main() {
	logging.SetDefaultCLILogger("info")

	root := &cobra.Command{
		Use:           "leetgrade",
		Short:         "Score coding-interview answers against their questions",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
		newHistoryCmd(),
		newRubricsCmd(),
		newAuthCmd(),
	)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// logLevel returns the effective log level. --verbose always means debug.
func logLevel(configured string, verbose bool) string {
	if verbose {
		return "debug"
	}
	if configured == "" {
		return "info"
	}
	return configured
}
