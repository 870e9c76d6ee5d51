package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Lists the rail stations",
	Args:  cobra.NoArgs,
	RunE:  runStations,
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}

func runStations(cmd *cobra.Command, args []string) error {
	rail, err := railClient()
	if err != nil {
		return err
	}

	stations, err := rail.FetchStations(context.Background())
	if err != nil {
		return err
	}
	for _, station := range stations {
		fmt.Printf("%-5s %s\n", station.Abbr, station.Name)
	}
	return nil
}
