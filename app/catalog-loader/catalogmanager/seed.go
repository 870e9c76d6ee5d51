package catalogmanager

import (
	"fmt"
	logger "log"
	"os"
	"time"

	"github.com/baytransit/nextrain/business/data/catalog"
	"github.com/baytransit/nextrain/business/transit"
	"github.com/baytransit/nextrain/foundation/httpclient"
	"github.com/gocarina/gocsv"
	"github.com/jmoiron/sqlx"
	"github.com/spkg/bom"
)

// seedRow is one line of a route stop seed file.
type seedRow struct {
	Agency    string  `csv:"agency"`
	Route     string  `csv:"route"`
	Direction string  `csv:"direction"`
	StopId    string  `csv:"stop_id"`
	StopName  string  `csv:"stop_name"`
	Lat       float64 `csv:"lat"`
	Lon       float64 `csv:"lon"`
}

// SeedRouteStops bootstraps the catalog from a CSV file, grouping rows by
// (agency, route) and replacing each route's traversal. Exported agency feeds
// ship with a BOM, which is stripped before parsing.
func SeedRouteStops(log *logger.Logger, db *sqlx.DB, csvPath string) error {
	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening seed file %s: %w", csvPath, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var rows []seedRow
	if err = gocsv.Unmarshal(bom.NewReader(file), &rows); err != nil {
		return fmt.Errorf("parsing seed file %s: %w", csvPath, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("seed file %s holds no rows", csvPath)
	}

	type routeKey struct {
		agency string
		route  string
	}
	var order []routeKey
	grouped := make(map[routeKey][]transit.RawStop)
	for _, row := range rows {
		key := routeKey{agency: row.Agency, route: row.Route}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], transit.RawStop{
			Id:        row.StopId,
			Name:      row.StopName,
			Lat:       row.Lat,
			Lon:       row.Lon,
			Direction: row.Direction,
		})
	}

	seededAt := time.Now()
	for _, key := range order {
		if err = catalog.ReplaceRouteStops(db, key.agency, key.route, grouped[key], seededAt); err != nil {
			return fmt.Errorf("seeding route %s: %w", key.route, err)
		}
		log.Printf("seeded %d stops for route %s", len(grouped[key]), key.route)
	}
	return nil
}

// DownloadSeed retrieves a seed CSV from a url to a local path before seeding.
func DownloadSeed(log *logger.Logger, destinationPath string, url string) error {
	bytesWritten, err := httpclient.DownloadFile(destinationPath, url)
	if err != nil {
		return fmt.Errorf("downloading seed file from %s: %w", url, err)
	}
	log.Printf("downloaded %d byte seed file to %s", bytesWritten, destinationPath)
	return nil
}
