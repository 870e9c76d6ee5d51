// Package transit provides the normalized prediction and stop types shared by
// every upstream agency adapter, along with the stop consolidation and
// direction resolution algorithms.
package transit

import (
	"math"
	"time"
)

// Prediction is a normalized estimated arrival/departure record for one
// vehicle at one stop, produced fresh for every query and never persisted.
type Prediction struct {
	ArrivalTime         time.Time `json:"arrival_time"`
	DepartureTime       time.Time `json:"departure_time"`
	StopName            string    `json:"stop_name"`
	StopId              string    `json:"stop_id"`
	Route               string    `json:"route"`
	Direction           string    `json:"direction"`
	VehicleId           string    `json:"vehicle_id"`
	MinutesUntilArrival int       `json:"minutes_until_arrival"`
}

// RawStop is one upstream stop record as reported for a single direction of a
// route, prior to consolidation.
type RawStop struct {
	Id        string  `json:"id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Direction string  `json:"direction"`
}

// ConsolidatedStop is a logical stop presented to riders. Id holds a single
// underlying stop id, or a comma-joined list when several physical stops share
// one display name.
type ConsolidatedStop struct {
	Id   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// RouteDirection describes one direction of travel on a route and the stop ids
// it serves, in upstream traversal order.
type RouteDirection struct {
	Direction   string   `json:"direction"`
	Destination string   `json:"destination"`
	StopIds     []string `json:"stop_ids"`
}

// DirectionEntry names the single underlying stop id to query for predictions
// in one direction at a consolidated stop.
type DirectionEntry struct {
	Direction   string `json:"direction"`
	Destination string `json:"destination"`
	StopId      string `json:"stop_id"`
}

// MinutesUntil returns the whole minutes between now and arrival, rounded to
// the nearest minute and clamped at zero for arrivals in the past.
func MinutesUntil(now time.Time, arrival time.Time) int {
	minutes := int(math.Round(arrival.Sub(now).Minutes()))
	if minutes < 0 {
		return 0
	}
	return minutes
}
