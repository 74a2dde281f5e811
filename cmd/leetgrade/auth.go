package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/leetgrade/internal/llm"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage model API keys in the OS keychain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "set <provider>",
		Short:     "Store an API key read from stdin",
		Args:      cobra.ExactArgs(1),
		ValidArgs: llm.Providers,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthSet(args[0], cmd.InOrStdin(), cmd.ErrOrStderr())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "delete <provider>",
		Short:     "Remove a stored API key",
		Args:      cobra.ExactArgs(1),
		ValidArgs: llm.Providers,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := llm.DeleteKey(args[0]); err != nil {
				return exitError(3, "%v", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Removed %s key\n", args[0])
			return nil
		},
	})

	return cmd
}

func runAuthSet(provider string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Paste %s API key: ", provider)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read key: %w", err)
	}
	fmt.Fprintln(out)

	if err := llm.SaveKey(provider, strings.TrimSpace(line)); err != nil {
		return exitError(3, "%v", err)
	}
	fmt.Fprintf(out, "Stored %s key in keychain service %q\n", provider, llm.KeyringService)
	return nil
}
