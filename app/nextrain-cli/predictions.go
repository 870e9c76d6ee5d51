package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baytransit/nextrain/business/transit/predictions"
)

var predictionsCmd = &cobra.Command{
	Use:   "predictions <agency> <stop> [route]",
	Short: "Shows upcoming predictions for a stop",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runPredictions,
}

var directionFlag string

func init() {
	predictionsCmd.Flags().StringVarP(&directionFlag, "direction", "d", "", "Direction filter (substring for bus, n|s for rail)")
	rootCmd.AddCommand(predictionsCmd)
}

func runPredictions(cmd *cobra.Command, args []string) error {
	agency := args[0]
	stop := args[1]
	route := ""
	if len(args) == 3 {
		route = args[2]
	}

	bus, err := busClient()
	if err != nil {
		return err
	}
	rail, err := railClient()
	if err != nil {
		return err
	}
	service := predictions.MakeService(cliLog, bus, rail)

	results, err := service.GetPredictions(context.Background(), agency, stop, route, directionFlag)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no predictions")
		return nil
	}
	for _, p := range results {
		fmt.Printf("%2d min  %-8s %-28s %s\n", p.MinutesUntilArrival, p.Route, p.Direction, p.StopName)
	}
	return nil
}
