package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/baytransit/nextrain/business/transit/servicecal"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [yyyy-mm-dd]",
	Short: "Shows the service schedule in effect on a date",
	Args:  cobra.RangeArgs(0, 1),
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	at := time.Now()
	if len(args) == 1 {
		parsed, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", args[0], err)
		}
		at = parsed
	}
	fmt.Println(servicecal.MakeCalendar().ScheduleFor(at))
	return nil
}
