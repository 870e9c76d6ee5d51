// Package catalog provides CRUD functionality for the transit metadata cache:
// flattened route stop rows for the bus agency and the rail station list.
// Consolidation is never persisted; readers replay the flattened rows through
// transit.ConsolidateStops.
package catalog

import (
	"fmt"
	"time"

	"github.com/baytransit/nextrain/business/transit"
	"github.com/baytransit/nextrain/business/transit/bart"
	"github.com/baytransit/nextrain/foundation/database"
	"github.com/jmoiron/sqlx"
)

// RouteStop is one flattened (route, direction, stop) row of the metadata
// cache.
type RouteStop struct {
	Agency    string    `db:"agency" json:"agency"`
	Route     string    `db:"route" json:"route"`
	Direction string    `db:"direction" json:"direction"`
	Position  int       `db:"position" json:"position"`
	StopId    string    `db:"stop_id" json:"stop_id"`
	StopName  string    `db:"stop_name" json:"stop_name"`
	Lat       float64   `db:"lat" json:"lat"`
	Lon       float64   `db:"lon" json:"lon"`
	Active    bool      `db:"active" json:"active"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StationRow is one rail station row of the metadata cache.
type StationRow struct {
	Abbr      string    `db:"abbr" json:"abbr"`
	Name      string    `db:"name" json:"name"`
	Lat       float64   `db:"lat" json:"lat"`
	Lon       float64   `db:"lon" json:"lon"`
	Active    bool      `db:"active" json:"active"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateSchema creates the catalog tables if they are not present. The ddl is
// valid for both the postgres and sqlite engines.
func CreateSchema(db *sqlx.DB) error {
	_, err := db.Exec("create table if not exists route_stop ( " +
		"agency text not null, " +
		"route text not null, " +
		"direction text not null, " +
		"position integer not null, " +
		"stop_id text not null, " +
		"stop_name text not null, " +
		"lat double precision not null, " +
		"lon double precision not null, " +
		"active boolean not null, " +
		"updated_at timestamp not null, " +
		"primary key (agency, route, direction, stop_id))")
	if err != nil {
		return fmt.Errorf("creating route_stop table: %w", err)
	}
	_, err = db.Exec("create table if not exists station ( " +
		"abbr text not null, " +
		"name text not null, " +
		"lat double precision not null, " +
		"lon double precision not null, " +
		"active boolean not null, " +
		"updated_at timestamp not null, " +
		"primary key (abbr))")
	if err != nil {
		return fmt.Errorf("creating station table: %w", err)
	}
	return nil
}

// ReplaceRouteStops replaces the cached stop rows for one route inside a
// single transaction: every existing row is marked inactive, then the new
// traversal is upserted active. Rows for stops that vanished upstream stay
// behind inactive.
func ReplaceRouteStops(db *sqlx.DB, agency string, route string, rawStops []transit.RawStop, at time.Time) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning route stop transaction: %w", err)
	}

	err = replaceRouteStops(tx, agency, route, rawStops, at)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func replaceRouteStops(tx *sqlx.Tx, agency string, route string, rawStops []transit.RawStop, at time.Time) error {
	markInactive := tx.Rebind("update route_stop set active = ? where agency = ? and route = ?")
	if _, err := tx.Exec(markInactive, false, agency, route); err != nil {
		return fmt.Errorf("marking route %s stops inactive: %w", route, err)
	}

	statementString := "insert into route_stop ( " +
		"agency, " +
		"route, " +
		"direction, " +
		"position, " +
		"stop_id, " +
		"stop_name, " +
		"lat, " +
		"lon, " +
		"active, " +
		"updated_at) " +
		"values (" +
		":agency, " +
		":route, " +
		":direction, " +
		":position, " +
		":stop_id, " +
		":stop_name, " +
		":lat, " +
		":lon, " +
		":active, " +
		":updated_at) " +
		"on conflict (agency, route, direction, stop_id) do update set " +
		"position = excluded.position, " +
		"stop_name = excluded.stop_name, " +
		"lat = excluded.lat, " +
		"lon = excluded.lon, " +
		"active = excluded.active, " +
		"updated_at = excluded.updated_at"
	statementString = tx.Rebind(statementString)

	for position, raw := range rawStops {
		row := RouteStop{
			Agency:    agency,
			Route:     route,
			Direction: raw.Direction,
			Position:  position,
			StopId:    raw.Id,
			StopName:  raw.Name,
			Lat:       raw.Lat,
			Lon:       raw.Lon,
			Active:    true,
			UpdatedAt: at,
		}
		if _, err := tx.NamedExec(statementString, row); err != nil {
			return fmt.Errorf("upserting stop %s on route %s: %w", raw.Id, route, err)
		}
	}
	return nil
}

// GetRouteStops reads the active cached traversal for a route in traversal
// order, along with the time the cache row set was last refreshed. Returns
// NotFoundError when the route has no active rows.
func GetRouteStops(db *sqlx.DB, agency string, route string) ([]transit.RawStop, time.Time, error) {
	statementString := "select agency, route, direction, position, stop_id, stop_name, lat, lon, active, updated_at " +
		"from route_stop " +
		"where agency = :agency and route = :route and active = :active " +
		"order by position"
	rows, err := database.PrepareNamedQueryRowsFromMap(statementString, db, map[string]interface{}{
		"agency": agency,
		"route":  route,
		"active": true,
	})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("querying stops for route %s: %w", route, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var rawStops []transit.RawStop
	var refreshedAt time.Time
	for rows.Next() {
		var row RouteStop
		if err = rows.StructScan(&row); err != nil {
			return nil, time.Time{}, fmt.Errorf("scanning stop row for route %s: %w", route, err)
		}
		rawStops = append(rawStops, transit.RawStop{
			Id:        row.StopId,
			Name:      row.StopName,
			Lat:       row.Lat,
			Lon:       row.Lon,
			Direction: row.Direction,
		})
		if row.UpdatedAt.After(refreshedAt) {
			refreshedAt = row.UpdatedAt
		}
	}
	if len(rawStops) == 0 {
		return nil, time.Time{}, &transit.NotFoundError{What: "route " + route}
	}
	return rawStops, refreshedAt, nil
}

// ListRoutes lists the distinct routes with active cached stops for an agency.
func ListRoutes(db *sqlx.DB, agency string) ([]string, error) {
	query := db.Rebind("select distinct route from route_stop where agency = ? and active = ? order by route")
	var routes []string
	if err := db.Select(&routes, query, agency, true); err != nil {
		return nil, fmt.Errorf("listing routes for %s: %w", agency, err)
	}
	return routes, nil
}

// ReplaceStations replaces the cached rail station list inside a single
// transaction, mark-inactive-then-reimport like the route stop sync.
func ReplaceStations(db *sqlx.DB, stations []bart.Station, at time.Time) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning station transaction: %w", err)
	}

	err = replaceStations(tx, stations, at)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func replaceStations(tx *sqlx.Tx, stations []bart.Station, at time.Time) error {
	markInactive := tx.Rebind("update station set active = ?")
	if _, err := tx.Exec(markInactive, false); err != nil {
		return fmt.Errorf("marking stations inactive: %w", err)
	}

	statementString := "insert into station ( " +
		"abbr, " +
		"name, " +
		"lat, " +
		"lon, " +
		"active, " +
		"updated_at) " +
		"values (" +
		":abbr, " +
		":name, " +
		":lat, " +
		":lon, " +
		":active, " +
		":updated_at) " +
		"on conflict (abbr) do update set " +
		"name = excluded.name, " +
		"lat = excluded.lat, " +
		"lon = excluded.lon, " +
		"active = excluded.active, " +
		"updated_at = excluded.updated_at"
	statementString = tx.Rebind(statementString)

	for _, station := range stations {
		row := StationRow{
			Abbr:      station.Abbr,
			Name:      station.Name,
			Lat:       station.Lat,
			Lon:       station.Lon,
			Active:    true,
			UpdatedAt: at,
		}
		if _, err := tx.NamedExec(statementString, row); err != nil {
			return fmt.Errorf("upserting station %s: %w", station.Abbr, err)
		}
	}
	return nil
}

// ListStations reads the active cached rail stations and the time they were
// last refreshed.
func ListStations(db *sqlx.DB) ([]bart.Station, time.Time, error) {
	query := db.Rebind("select abbr, name, lat, lon, active, updated_at from station where active = ? order by name")
	var rows []StationRow
	if err := db.Select(&rows, query, true); err != nil {
		return nil, time.Time{}, fmt.Errorf("listing stations: %w", err)
	}

	stations := make([]bart.Station, 0, len(rows))
	var refreshedAt time.Time
	for _, row := range rows {
		stations = append(stations, bart.Station{
			Abbr: row.Abbr,
			Name: row.Name,
			Lat:  row.Lat,
			Lon:  row.Lon,
		})
		if row.UpdatedAt.After(refreshedAt) {
			refreshedAt = row.UpdatedAt
		}
	}
	return stations, refreshedAt, nil
}
