package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"submate/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check binaries, directories, and API connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			failures := 0
			for _, result := range results {
				state := "ok"
				if !result.Passed {
					state = "FAIL"
					failures++
				}
				rows = append(rows, []string{result.Name, state, result.Detail})
			}

			out := renderTable([]string{"Check", "State", "Detail"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft})
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if failures > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failures)
			}
			return nil
		},
	}
}
