// Package bart translates the rail agency's estimated-departure feed into the
// normalized transit types. The upstream api has no route or direction filter,
// so all filtering happens client side.
package bart

import (
	"context"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/baytransit/nextrain/business/transit"
	"github.com/baytransit/nextrain/foundation/httpclient"
)

// AgencyCode identifies the rail agency in orchestrator dispatch and errors.
const AgencyCode = "bart"

// estimates whose minutes field reads "Leaving" are departing now
const leavingValue = "leaving"

const maxPredictions = 3

// Station is one rail station from the upstream catalog.
type Station struct {
	Abbr string  `json:"abbr"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Client calls the rail agency's real time api.
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

type rawEstimate struct {
	Minutes    string `json:"minutes"`
	Direction  string `json:"direction"`
	Color      string `json:"color"`
	CancelFlag string `json:"cancelflag"`
}

type etdEnvelope struct {
	Root struct {
		Station []struct {
			Name string `json:"name"`
			Abbr string `json:"abbr"`
			Etd  []struct {
				Destination string        `json:"destination"`
				Estimate    []rawEstimate `json:"estimate"`
			} `json:"etd"`
		} `json:"station"`
	} `json:"root"`
}

type stationsEnvelope struct {
	Root struct {
		Stations struct {
			Station []struct {
				Name string `json:"name"`
				Abbr string `json:"abbr"`
				Lat  string `json:"gtfs_latitude"`
				Lon  string `json:"gtfs_longitude"`
			} `json:"station"`
		} `json:"stations"`
	} `json:"root"`
}

// FetchPredictions retrieves upcoming departures for a station, keeping only
// estimates whose direction token (first character, lower cased) matches the
// requested direction, whose line color matches one of lineColors case
// insensitively, and which are not flagged cancelled. Results are sorted
// ascending by minutes until arrival and capped at three. A station with no
// scheduled departures yields an empty slice, not an error.
func (c *Client) FetchPredictions(ctx context.Context, station string, lineColors []string, direction string) ([]transit.Prediction, error) {
	requestURL := c.endpoint("etd.aspx", url.Values{
		"cmd":  []string{"etd"},
		"orig": []string{station},
	})

	var envelope etdEnvelope
	if err := c.get(ctx, requestURL, &envelope); err != nil {
		return nil, err
	}

	wantedColors := make(map[string]bool, len(lineColors))
	for _, color := range lineColors {
		wantedColors[strings.ToLower(strings.TrimSpace(color))] = true
	}

	now := c.now()
	predictions := make([]transit.Prediction, 0)
	for _, stationData := range envelope.Root.Station {
		for _, etd := range stationData.Etd {
			for _, estimate := range etd.Estimate {
				if !c.estimateWanted(estimate, wantedColors, direction) {
					continue
				}
				minutes, err := parseMinutes(estimate.Minutes)
				if err != nil {
					return nil, fmt.Errorf("station %s: %w", station, err)
				}
				arrival := now.Add(time.Duration(minutes) * time.Minute)
				predictions = append(predictions, transit.Prediction{
					ArrivalTime:         arrival,
					DepartureTime:       arrival,
					StopName:            stationData.Name,
					StopId:              stationData.Abbr,
					Route:               strings.ToUpper(estimate.Color),
					Direction:           etd.Destination,
					MinutesUntilArrival: minutes,
				})
			}
		}
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].MinutesUntilArrival < predictions[j].MinutesUntilArrival
	})
	if len(predictions) > maxPredictions {
		predictions = predictions[:maxPredictions]
	}
	return predictions, nil
}

func (c *Client) estimateWanted(estimate rawEstimate, wantedColors map[string]bool, direction string) bool {
	if estimate.CancelFlag == "1" {
		return false
	}
	if len(estimate.Direction) == 0 {
		return false
	}
	token := strings.ToLower(estimate.Direction[:1])
	if token != direction {
		return false
	}
	return wantedColors[strings.ToLower(estimate.Color)]
}

// parseMinutes converts the upstream relative-minutes field to a minute count.
func parseMinutes(value string) (int, error) {
	if strings.ToLower(strings.TrimSpace(value)) == leavingValue {
		return 0, nil
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("unexpected minutes value %q", value)
	}
	return minutes, nil
}

// FetchStations retrieves the rail station catalog.
func (c *Client) FetchStations(ctx context.Context) ([]Station, error) {
	requestURL := c.endpoint("stn.aspx", url.Values{
		"cmd": []string{"stns"},
	})

	var envelope stationsEnvelope
	if err := c.get(ctx, requestURL, &envelope); err != nil {
		return nil, err
	}

	stations := make([]Station, 0, len(envelope.Root.Stations.Station))
	for _, s := range envelope.Root.Stations.Station {
		lat, err := strconv.ParseFloat(s.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing latitude for station %s: %w", s.Abbr, err)
		}
		lon, err := strconv.ParseFloat(s.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing longitude for station %s: %w", s.Abbr, err)
		}
		stations = append(stations, Station{
			Abbr: s.Abbr,
			Name: s.Name,
			Lat:  lat,
			Lon:  lon,
		})
	}
	return stations, nil
}

func (c *Client) endpoint(operation string, params url.Values) string {
	params.Set("key", c.apiKey)
	params.Set("json", "y")
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
