package main

import (
	"fmt"
	logger "log"
	"os"

	"github.com/spf13/cobra"

	"github.com/baytransit/nextrain/business/transit/actransit"
	"github.com/baytransit/nextrain/business/transit/bart"
	"github.com/baytransit/nextrain/foundation/agencyconf"
)

var rootCmd = &cobra.Command{
	Use:          "nextrain",
	Short:        "nextrain ops tool",
	Long:         "Queries the upstream transit agency feeds directly",
	SilenceUsage: true,
}

var agenciesPath string

var cliLog = logger.New(os.Stderr, "NEXTRAIN_CLI : ", logger.LstdFlags)

func init() {
	rootCmd.PersistentFlags().StringVarP(&agenciesPath, "agencies", "a", "agencies.yml", "Path to the agency registry")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadRegistry() (*agencyconf.Registry, error) {
	registry, err := agencyconf.Load(agenciesPath)
	if err != nil {
		return nil, fmt.Errorf("loading agency registry: %w", err)
	}
	return registry, nil
}

func busClient() (*actransit.Client, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	agency, ok := registry.Lookup(actransit.AgencyCode)
	if !ok {
		return nil, fmt.Errorf("agency registry is missing %q", actransit.AgencyCode)
	}
	return actransit.MakeClient(cliLog, nil, agency.BaseURL, agency.APIKey), nil
}

func railClient() (*bart.Client, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	agency, ok := registry.Lookup(bart.AgencyCode)
	if !ok {
		return nil, fmt.Errorf("agency registry is missing %q", bart.AgencyCode)
	}
	return bart.MakeClient(cliLog, nil, agency.BaseURL, agency.APIKey), nil
}
