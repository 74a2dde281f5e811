package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/leetgrade/internal/rubric"
)

func newRubricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rubrics",
		Short: "List built-in grading rubrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := rubric.List()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, n := range names {
				r, err := rubric.LoadBuiltin(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%-10s %s\n", r.Name, r.Description)
			}
			return nil
		},
	}
}
