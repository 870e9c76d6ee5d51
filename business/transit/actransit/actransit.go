// Package actransit translates the bus agency's BusTime-style prediction and
// stop feeds into the normalized transit types.
package actransit

import (
	"context"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"net/url"
	"time"

	"github.com/baytransit/nextrain/business/transit"
	"github.com/baytransit/nextrain/business/transit/transittime"
	"github.com/baytransit/nextrain/foundation/httpclient"
)

// AgencyCode identifies the bus agency in orchestrator dispatch and errors.
const AgencyCode = "actransit"

// the upstream prediction endpoint caps results for us
const maxPredictions = 3

// Client calls the bus agency's real time api.
type Client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	now        func() time.Time
}

// MakeClient builds a Client. httpClient may be nil to use a default client.
func MakeClient(log *logger.Logger, httpClient *http.Client, baseURL string, apiKey string) *Client {
	return &Client{
		log:        log,
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		now:        time.Now,
	}
}

// rawPrediction is one prd element of the bustime-response envelope.
type rawPrediction struct {
	PredictionTime string `json:"prdtm"`
	StopName       string `json:"stpnm"`
	StopId         string `json:"stpid"`
	Route          string `json:"rt"`
	RouteDirection string `json:"rtdir"`
	VehicleId      string `json:"vid"`
}

type rawError struct {
	Route   string `json:"rt"`
	StopId  string `json:"stpid"`
	Message string `json:"msg"`
}

type predictionsEnvelope struct {
	BustimeResponse struct {
		Predictions []rawPrediction `json:"prd"`
		Errors      []rawError      `json:"error"`
	} `json:"bustime-response"`
}

type directionsEnvelope struct {
	BustimeResponse struct {
		Directions []struct {
			Direction string `json:"dir"`
		} `json:"directions"`
		Errors []rawError `json:"error"`
	} `json:"bustime-response"`
}

type stopsEnvelope struct {
	BustimeResponse struct {
		Stops []struct {
			StopId   string  `json:"stpid"`
			StopName string  `json:"stpnm"`
			Lat      float64 `json:"lat"`
			Lon      float64 `json:"lon"`
		} `json:"stops"`
		Errors []rawError `json:"error"`
	} `json:"bustime-response"`
}

// FetchPredictions retrieves up to three upcoming predictions for a single
// stop id on a route. An upstream error payload takes precedence over any
// prediction data returned alongside it.
func (c *Client) FetchPredictions(ctx context.Context, stopId string, route string) ([]transit.Prediction, error) {
	requestURL := c.endpoint("getpredictions", url.Values{
		"rt":    []string{route},
		"stpid": []string{stopId},
		"top":   []string{fmt.Sprintf("%d", maxPredictions)},
	})

	var envelope predictionsEnvelope
	if err := c.get(ctx, requestURL, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.BustimeResponse.Errors) > 0 {
		return nil, &transit.UpstreamError{Agency: AgencyCode, Message: envelope.BustimeResponse.Errors[0].Message}
	}

	now := c.now()
	predictions := make([]transit.Prediction, 0, len(envelope.BustimeResponse.Predictions))
	for _, raw := range envelope.BustimeResponse.Predictions {
		arrival, err := transittime.ParsePacific(raw.PredictionTime)
		if err != nil {
			return nil, fmt.Errorf("parsing prediction time for stop %s on route %s: %w", stopId, route, err)
		}
		predictions = append(predictions, transit.Prediction{
			ArrivalTime:         arrival,
			DepartureTime:       arrival.Add(-time.Minute),
			StopName:            raw.StopName,
			StopId:              raw.StopId,
			Route:               raw.Route,
			Direction:           raw.RouteDirection,
			VehicleId:           raw.VehicleId,
			MinutesUntilArrival: transit.MinutesUntil(now, arrival),
		})
	}
	return predictions, nil
}

// FetchDirections retrieves the route's direction names in upstream order.
func (c *Client) FetchDirections(ctx context.Context, route string) ([]string, error) {
	requestURL := c.endpoint("getdirections", url.Values{
		"rt": []string{route},
	})

	var envelope directionsEnvelope
	if err := c.get(ctx, requestURL, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.BustimeResponse.Errors) > 0 {
		return nil, &transit.UpstreamError{Agency: AgencyCode, Message: envelope.BustimeResponse.Errors[0].Message}
	}

	directions := make([]string, 0, len(envelope.BustimeResponse.Directions))
	for _, d := range envelope.BustimeResponse.Directions {
		directions = append(directions, d.Direction)
	}
	return directions, nil
}

// FetchDirectionStops retrieves the stops served by one direction of a route,
// in upstream order.
func (c *Client) FetchDirectionStops(ctx context.Context, route string, direction string) ([]transit.RawStop, error) {
	requestURL := c.endpoint("getstops", url.Values{
		"rt":  []string{route},
		"dir": []string{direction},
	})

	var envelope stopsEnvelope
	if err := c.get(ctx, requestURL, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.BustimeResponse.Errors) > 0 {
		return nil, &transit.UpstreamError{Agency: AgencyCode, Message: envelope.BustimeResponse.Errors[0].Message}
	}

	stops := make([]transit.RawStop, 0, len(envelope.BustimeResponse.Stops))
	for _, s := range envelope.BustimeResponse.Stops {
		stops = append(stops, transit.RawStop{
			Id:        s.StopId,
			Name:      s.StopName,
			Lat:       s.Lat,
			Lon:       s.Lon,
			Direction: direction,
		})
	}
	return stops, nil
}

// FetchRouteStops traverses every direction of a route and returns the full
// raw stop list in traversal order, ready for consolidation.
func (c *Client) FetchRouteStops(ctx context.Context, route string) ([]transit.RawStop, error) {
	directions, err := c.FetchDirections(ctx, route)
	if err != nil {
		return nil, err
	}

	var rawStops []transit.RawStop
	for _, direction := range directions {
		stops, err := c.FetchDirectionStops(ctx, route, direction)
		if err != nil {
			return nil, err
		}
		rawStops = append(rawStops, stops...)
	}
	return rawStops, nil
}

// FetchRouteDirections shapes the same traversal as the route's direction
// topology. The bus feed's direction name doubles as the destination headsign.
func (c *Client) FetchRouteDirections(ctx context.Context, route string) ([]transit.RouteDirection, error) {
	directions, err := c.FetchDirections(ctx, route)
	if err != nil {
		return nil, err
	}

	routeDirections := make([]transit.RouteDirection, 0, len(directions))
	for _, direction := range directions {
		stops, err := c.FetchDirectionStops(ctx, route, direction)
		if err != nil {
			return nil, err
		}
		stopIds := make([]string, 0, len(stops))
		for _, stop := range stops {
			stopIds = append(stopIds, stop.Id)
		}
		routeDirections = append(routeDirections, transit.RouteDirection{
			Direction:   direction,
			Destination: direction,
			StopIds:     stopIds,
		})
	}
	return routeDirections, nil
}

func (c *Client) endpoint(operation string, params url.Values) string {
	params.Set("key", c.apiKey)
	params.Set("format", "json")
	return fmt.Sprintf("%s/%s?%s", c.baseURL, operation, params.Encode())
}

func (c *Client) get(ctx context.Context, requestURL string, target interface{}) error {
	err := httpclient.GetJSON(ctx, c.httpClient, requestURL, target)
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		return &transit.UpstreamStatusError{Agency: AgencyCode, StatusCode: statusErr.StatusCode}
	}
	return err
}
