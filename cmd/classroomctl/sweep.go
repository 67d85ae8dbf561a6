package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

func NewSweepCommand() *cobra.Command {
	var (
		dryRun bool
		grace  time.Duration
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "sweep-orphans",
		Short: "Delete attachment blobs that have no attachment record",
		Long: `Scans the blob store for attachment blobs without a matching attachment
record and deletes them. Blobs younger than the grace period are left alone
so uploads still in flight are not touched. Intended to run on a schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			sweeper, err := rt.cfg.BuildSweeper(rt.backends, rt.log.Named("sweeper"))
			if err != nil {
				return err
			}
			report, err := sweeper.Sweep(cmd.Context(), classroom.SweepOptions{DryRun: dryRun, GracePeriod: grace})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, report)
			}
			fmt.Fprintf(out, "scanned %d, referenced %d, young %d, orphans %d\n",
				report.Scanned, report.Referenced, len(report.Young), len(report.Orphans))
			for _, key := range report.Orphans {
				fmt.Fprintf(out, "  orphan %s\n", key)
			}
			if dryRun {
				fmt.Fprintln(out, "dry run: nothing deleted")
				return nil
			}
			fmt.Fprintf(out, "deleted %d, failed %d\n", len(report.Deleted), len(report.Failed))
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d orphan blobs could not be deleted", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report orphans without deleting them")
	cmd.Flags().DurationVar(&grace, "grace", 0, "minimum blob age before deletion (default ORPHAN_GRACE_PERIOD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
