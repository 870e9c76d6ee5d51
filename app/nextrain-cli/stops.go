package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baytransit/nextrain/business/transit"
)

var stopsCmd = &cobra.Command{
	Use:   "stops <route>",
	Short: "Lists a bus route's consolidated stops",
	Args:  cobra.ExactArgs(1),
	RunE:  runStops,
}

func init() {
	rootCmd.AddCommand(stopsCmd)
}

func runStops(cmd *cobra.Command, args []string) error {
	route := args[0]
	bus, err := busClient()
	if err != nil {
		return err
	}

	rawStops, err := bus.FetchRouteStops(context.Background(), route)
	if err != nil {
		return err
	}
	consolidated, _ := transit.ConsolidateStops(rawStops)
	for _, stop := range consolidated {
		fmt.Printf("%-14s %s\n", stop.Id, stop.Name)
	}
	return nil
}
