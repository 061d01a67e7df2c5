package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "creative-task-api",
		Short: "Task lifecycle API for creative agencies",
		// Serve when no subcommand is given
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), purgeNotificationsCmd(), reconcileWorkloadCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
