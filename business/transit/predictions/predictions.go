// Package predictions dispatches prediction queries to the correct agency
// adapter and applies the caller's direction filter.
package predictions

import (
	"context"
	logger "log"
	"strings"

	"github.com/baytransit/nextrain/business/transit"
	"github.com/baytransit/nextrain/business/transit/actransit"
	"github.com/baytransit/nextrain/business/transit/bart"
)

// BusPredictionFetcher fetches predictions for a single bus stop id on a route.
type BusPredictionFetcher interface {
	FetchPredictions(ctx context.Context, stopId string, route string) ([]transit.Prediction, error)
}

// RailPredictionFetcher fetches filtered predictions for a rail station.
type RailPredictionFetcher interface {
	FetchPredictions(ctx context.Context, station string, lineColors []string, direction string) ([]transit.Prediction, error)
}

// Service answers prediction queries for every supported agency.
type Service struct {
	log  *logger.Logger
	bus  BusPredictionFetcher
	rail RailPredictionFetcher
}

// MakeService builds a Service around the two agency adapters.
func MakeService(log *logger.Logger, bus BusPredictionFetcher, rail RailPredictionFetcher) *Service {
	return &Service{
		log:  log,
		bus:  bus,
		rail: rail,
	}
}

// GetPredictions retrieves normalized predictions for a consolidated stop.
// For the bus agency a comma-joined stop id fans out to one adapter call per
// underlying id, merged in order, and the optional direction filter applies as
// a case-insensitive substring match afterwards. For the rail agency the route
// (one or more comma-separated line colors) and a direction of "n" or "s" are
// mandatory, and filtering happens inside the adapter. Results keep adapter
// order.
func (s *Service) GetPredictions(ctx context.Context, agency string, stopIdOrList string, route string, directionFilter string) ([]transit.Prediction, error) {
	switch agency {
	case actransit.AgencyCode:
		return s.busPredictions(ctx, stopIdOrList, route, directionFilter)
	case bart.AgencyCode:
		return s.railPredictions(ctx, stopIdOrList, route, directionFilter)
	default:
		return nil, &transit.UnsupportedAgencyError{Agency: agency}
	}
}

func (s *Service) busPredictions(ctx context.Context, stopIdOrList string, route string, directionFilter string) ([]transit.Prediction, error) {
	stopIds := transit.SplitStopId(stopIdOrList)
	if len(stopIds) == 0 {
		return nil, &transit.MissingParameterError{Name: "stop"}
	}

	var merged []transit.Prediction
	for _, stopId := range stopIds {
		predictions, err := s.bus.FetchPredictions(ctx, stopId, route)
		if err != nil {
			return nil, err
		}
		merged = append(merged, predictions...)
	}

	if len(directionFilter) == 0 {
		return merged, nil
	}
	wanted := strings.ToLower(directionFilter)
	filtered := make([]transit.Prediction, 0, len(merged))
	for _, prediction := range merged {
		if strings.Contains(strings.ToLower(prediction.Direction), wanted) {
			filtered = append(filtered, prediction)
		}
	}
	return filtered, nil
}

func (s *Service) railPredictions(ctx context.Context, station string, route string, direction string) ([]transit.Prediction, error) {
	if len(station) == 0 {
		return nil, &transit.MissingParameterError{Name: "stop"}
	}
	if len(route) == 0 {
		return nil, &transit.MissingParameterError{Name: "route"}
	}
	if direction != "n" && direction != "s" {
		return nil, &transit.MissingParameterError{Name: "direction"}
	}

	lineColors := strings.Split(route, ",")
	for i := range lineColors {
		lineColors[i] = strings.TrimSpace(lineColors[i])
	}
	return s.rail.FetchPredictions(ctx, station, lineColors, direction)
}
