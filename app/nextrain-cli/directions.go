package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baytransit/nextrain/business/transit"
)

var directionsCmd = &cobra.Command{
	Use:   "directions <route> <stop-id>",
	Short: "Resolves the stop id to query per direction of a bus route",
	Args:  cobra.ExactArgs(2),
	RunE:  runDirections,
}

func init() {
	rootCmd.AddCommand(directionsCmd)
}

func runDirections(cmd *cobra.Command, args []string) error {
	route := args[0]
	stop := args[1]
	bus, err := busClient()
	if err != nil {
		return err
	}

	routeDirections, err := bus.FetchRouteDirections(context.Background(), route)
	if err != nil {
		return err
	}
	entries, err := transit.ResolveDirections(stop, routeDirections)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("%-28s stop %s\n", entry.Direction, entry.StopId)
	}
	return nil
}
