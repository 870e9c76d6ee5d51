// Package webapi exposes the aggregation core over http: predictions,
// consolidated stops, directions, stations, service schedule and support
// intake.
package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"strings"
	"time"

	"github.com/baytransit/nextrain/business/data/catalog"
	"github.com/baytransit/nextrain/business/support"
	"github.com/baytransit/nextrain/business/transit"
	"github.com/baytransit/nextrain/business/transit/actransit"
	"github.com/baytransit/nextrain/business/transit/bart"
	"github.com/baytransit/nextrain/business/transit/predictions"
	"github.com/baytransit/nextrain/business/transit/servicecal"
	"github.com/baytransit/nextrain/foundation/ttlcache"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

// Handlers holds the collaborators every endpoint needs.
type Handlers struct {
	log         *logger.Logger
	predictions *predictions.Service
	bus         *actransit.Client
	rail        *bart.Client
	db          *sqlx.DB
	cache       *ttlcache.Cache
	calendar    *servicecal.Calendar
	publisher   *PredictionPublisher
	intake      *support.Intake
}

// MakeHandlers builds the endpoint handler set. publisher may be nil when no
// nats connection is configured.
func MakeHandlers(log *logger.Logger,
	predictionService *predictions.Service,
	bus *actransit.Client,
	rail *bart.Client,
	db *sqlx.DB,
	cache *ttlcache.Cache,
	publisher *PredictionPublisher,
	intake *support.Intake) *Handlers {
	return &Handlers{
		log:         log,
		predictions: predictionService,
		bus:         bus,
		rail:        rail,
		db:          db,
		cache:       cache,
		calendar:    servicecal.MakeCalendar(),
		publisher:   publisher,
		intake:      intake,
	}
}

// getPredictions serves /v1/predictions. Responses are cached briefly; a hit
// reports its age in the Age header.
func (h *Handlers) getPredictions(w http.ResponseWriter, r *http.Request) {
	agency := r.FormValue("agency")
	stop := r.FormValue("stop")
	route := r.FormValue("route")
	direction := r.FormValue("direction")

	cacheKey := strings.Join([]string{agency, stop, route, direction}, "|")
	if cached, age, ok := h.cache.Get(cacheKey); ok {
		w.Header().Set("Age", fmt.Sprintf("%d", int(age.Seconds())))
		writeJSON(h.log, w, http.StatusOK, cached)
		return
	}

	results, err := h.predictions.GetPredictions(r.Context(), agency, stop, route, direction)
	if err != nil {
		writeError(h.log, w, err)
		return
	}

	response := predictionsResponse{
		Success:     true,
		Agency:      agency,
		Stop:        stop,
		Route:       route,
		Predictions: results,
	}
	h.cache.Set(cacheKey, response)
	h.publisher.publishServed(predictionEvent{
		Agency:      agency,
		Stop:        stop,
		Route:       route,
		ServedAt:    time.Now(),
		Predictions: results,
	})
	writeJSON(h.log, w, http.StatusOK, response)
}

// getRouteStops serves the consolidated stop list for a bus route, reading
// through the metadata cache and refreshing it in the background after an
// upstream fetch.
func (h *Handlers) getRouteStops(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	agency := vars["agency"]
	route := vars["route"]
	if agency != actransit.AgencyCode {
		writeError(h.log, w, &transit.UnsupportedAgencyError{Agency: agency})
		return
	}

	rawStops, err := h.routeStops(r, route)
	if err != nil {
		writeError(h.log, w, err)
		return
	}

	consolidated, _ := transit.ConsolidateStops(rawStops)
	writeJSON(h.log, w, http.StatusOK, stopsResponse{
		Success: true,
		Agency:  agency,
		Route:   route,
		Stops:   consolidated,
	})
}

// routeStops reads the flattened stop rows from the metadata cache, falling
// back to the upstream feed. The cache write after a fallback never blocks
// the response.
func (h *Handlers) routeStops(r *http.Request, route string) ([]transit.RawStop, error) {
	if h.db != nil {
		rawStops, _, err := catalog.GetRouteStops(h.db, actransit.AgencyCode, route)
		if err == nil {
			return rawStops, nil
		}
		var notFound *transit.NotFoundError
		if !errors.As(err, &notFound) {
			h.log.Printf("catalog read failed for route %s, falling back to upstream: %v", route, err)
		}
	}

	rawStops, err := h.bus.FetchRouteStops(r.Context(), route)
	if err != nil {
		return nil, err
	}
	if len(rawStops) == 0 {
		return nil, &transit.NotFoundError{What: "route " + route}
	}
	if h.db != nil {
		go func() {
			if err := catalog.ReplaceRouteStops(h.db, actransit.AgencyCode, route, rawStops, time.Now()); err != nil {
				h.log.Printf("background catalog write failed for route %s: %v", route, err)
			}
		}()
	}
	return rawStops, nil
}

// getStopDirections serves the resolved direction entries for a consolidated
// stop on a bus route.
func (h *Handlers) getStopDirections(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	agency := vars["agency"]
	route := vars["route"]
	stop := vars["stop"]
	if agency != actransit.AgencyCode {
		writeError(h.log, w, &transit.UnsupportedAgencyError{Agency: agency})
		return
	}

	routeDirections, err := h.bus.FetchRouteDirections(r.Context(), route)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	entries, err := transit.ResolveDirections(stop, routeDirections)
	if err != nil {
		writeError(h.log, w, err)
		return
	}

	writeJSON(h.log, w, http.StatusOK, directionsResponse{
		Success:    true,
		Agency:     agency,
		Route:      route,
		Stop:       stop,
		Directions: entries,
	})
}

// getStations serves the rail station list, read through the metadata cache.
func (h *Handlers) getStations(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		stations, _, err := catalog.ListStations(h.db)
		if err == nil && len(stations) > 0 {
			h.writeStations(w, stations)
			return
		}
		if err != nil {
			h.log.Printf("catalog station read failed, falling back to upstream: %v", err)
		}
	}

	stations, err := h.rail.FetchStations(r.Context())
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	if h.db != nil {
		go func() {
			if err := catalog.ReplaceStations(h.db, stations, time.Now()); err != nil {
				h.log.Printf("background station catalog write failed: %v", err)
			}
		}()
	}
	h.writeStations(w, stations)
}

func (h *Handlers) writeStations(w http.ResponseWriter, stations []bart.Station) {
	writeJSON(h.log, w, http.StatusOK, struct {
		Success  bool           `json:"success"`
		Agency   string         `json:"agency"`
		Stations []bart.Station `json:"stations"`
	}{
		Success:  true,
		Agency:   bart.AgencyCode,
		Stations: stations,
	})
}

// getSchedule reports the service schedule in effect today.
func (h *Handlers) getSchedule(w http.ResponseWriter, _ *http.Request) {
	writeJSON(h.log, w, http.StatusOK, struct {
		Success  bool   `json:"success"`
		Schedule string `json:"schedule"`
	}{
		Success:  true,
		Schedule: h.calendar.ScheduleFor(time.Now()).String(),
	})
}

// postSupport accepts a rider support message and relays it.
func (h *Handlers) postSupport(w http.ResponseWriter, r *http.Request) {
	var message support.Message
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		writeJSON(h.log, w, http.StatusBadRequest, errorResponse{Error: "malformed support message body"})
		return
	}
	ticket, err := h.intake.Submit(message)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, struct {
		Success  bool   `json:"success"`
		TicketId string `json:"ticket_id"`
	}{
		Success:  true,
		TicketId: ticket.Id,
	})
}
