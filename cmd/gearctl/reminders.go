package main

import (
	"fmt"

	"gearvault/internal/modules/maintenance"

	"github.com/spf13/cobra"
)

func remindersCmd(open func(bool) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "Run the overdue maintenance sweep once",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(false)
			if err != nil {
				return err
			}

			job := maintenance.NewReminderJob(e.store, nil, e.cfg.MaintenanceInterval, e.log)
			overdue, err := job.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d item(s) overdue\n", len(overdue))
			for _, r := range overdue {
				fmt.Fprintf(out, "  equipment %d due %s\n", r.EquipmentID, r.NextDueAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}
