// Package catalogmanager maintains the transit metadata catalog: full syncs
// from the upstream agency feeds, CSV bootstrap seeding and a periodic sync
// loop.
package catalogmanager

import (
	"context"
	"fmt"
	logger "log"
	"os"
	"time"

	"github.com/baytransit/nextrain/business/data/catalog"
	"github.com/baytransit/nextrain/business/transit/actransit"
	"github.com/baytransit/nextrain/business/transit/bart"
	"github.com/jmoiron/sqlx"
)

// SyncCatalog performs one full catalog sync: every configured bus route's
// stop traversal plus the rail station list, each replaced with the
// mark-inactive-then-reimport contract.
func SyncCatalog(log *logger.Logger,
	db *sqlx.DB,
	bus *actransit.Client,
	rail *bart.Client,
	routes []string) error {

	ctx := context.Background()
	syncedAt := time.Now()

	for _, route := range routes {
		rawStops, err := bus.FetchRouteStops(ctx, route)
		if err != nil {
			return fmt.Errorf("fetching stops for route %s: %w", route, err)
		}
		if err = catalog.ReplaceRouteStops(db, actransit.AgencyCode, route, rawStops, syncedAt); err != nil {
			return fmt.Errorf("replacing stops for route %s: %w", route, err)
		}
		log.Printf("synced %d stops for route %s", len(rawStops), route)
	}

	stations, err := rail.FetchStations(ctx)
	if err != nil {
		return fmt.Errorf("fetching stations: %w", err)
	}
	if err = catalog.ReplaceStations(db, stations, syncedAt); err != nil {
		return fmt.Errorf("replacing stations: %w", err)
	}
	log.Printf("synced %d stations", len(stations))
	return nil
}

// ListCatalog logs the cached routes and stations.
func ListCatalog(log *logger.Logger, db *sqlx.DB) error {
	routes, err := catalog.ListRoutes(db, actransit.AgencyCode)
	if err != nil {
		return err
	}
	for _, route := range routes {
		rawStops, refreshedAt, err := catalog.GetRouteStops(db, actransit.AgencyCode, route)
		if err != nil {
			return err
		}
		log.Printf("route %s: %d stops, refreshed %s", route, len(rawStops), refreshedAt.Format(time.RFC3339))
	}

	stations, refreshedAt, err := catalog.ListStations(db)
	if err != nil {
		return err
	}
	if len(stations) > 0 {
		log.Printf("%d stations, refreshed %s", len(stations), refreshedAt.Format(time.RFC3339))
	}
	return nil
}

// RunSyncLoop re-syncs the catalog every syncEverySeconds until a shutdown
// signal arrives. A failed sync is logged and retried on the next interval.
func RunSyncLoop(log *logger.Logger,
	db *sqlx.DB,
	bus *actransit.Client,
	rail *bart.Client,
	routes []string,
	syncEverySeconds int,
	shutdownSignal chan os.Signal) error {

	sleepChan := make(chan bool)
	for {
		if err := SyncCatalog(log, db, bus, rail, routes); err != nil {
			log.Printf("catalog sync failed, will retry: %v", err)
		}
		go func() {
			time.Sleep(time.Duration(syncEverySeconds) * time.Second)
			sleepChan <- true
		}()
		select {
		case sig := <-shutdownSignal:
			log.Printf("ending catalog sync loop on shutdown signal %v", sig)
			return nil
		case <-sleepChan:
		}
	}
}
