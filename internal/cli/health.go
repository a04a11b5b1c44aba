package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up and its dependencies are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			live, err := apiClient.Health(ctx)
			if err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}
			ready, readyErr := apiClient.Ready(ctx)

			if getOutputFormat() != "table" {
				return printOutput(map[string]interface{}{"live": live, "ready": ready})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", live.Service, formatStatus(live.Status))
			if readyErr != nil {
				fmt.Fprintf(out, "Not ready: %v\n", readyErr)
				return nil
			}
			fmt.Fprintf(out, "Database:  %s\n", ready.Database)
			fmt.Fprintf(out, "Cooldowns: %s\n", ready.Cooldown)
			return nil
		},
	}
}
