package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func purgeNotificationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-notifications",
		Short: "Delete notifications past their expiry and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			removed, err := a.notifier.PurgeExpired()
			if err != nil {
				return err
			}
			a.logger.Info("purged expired notifications", "removed", removed)
			return nil
		},
	}
}

func reconcileWorkloadCmd() *cobra.Command {
	var orgID string
	cmd := &cobra.Command{
		Use:   "reconcile-workload",
		Short: "Rebuild designer workload counters of an organization from its tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if orgID == "" {
				return errors.New("--org is required")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			_, err = a.workload.Reconcile(cmd.Context(), orgID)
			return err
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization ID to reconcile")
	return cmd
}
