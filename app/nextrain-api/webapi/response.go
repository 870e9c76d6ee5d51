package webapi

import (
	"encoding/json"
	"errors"
	logger "log"
	"net/http"

	"github.com/baytransit/nextrain/business/support"
	"github.com/baytransit/nextrain/business/transit"
)

// predictionsResponse is the success envelope for the prediction endpoint.
type predictionsResponse struct {
	Success     bool                 `json:"success"`
	Agency      string               `json:"agency"`
	Stop        string               `json:"stop"`
	Route       string               `json:"route,omitempty"`
	Predictions []transit.Prediction `json:"predictions"`
}

type stopsResponse struct {
	Success bool                       `json:"success"`
	Agency  string                     `json:"agency"`
	Route   string                     `json:"route"`
	Stops   []transit.ConsolidatedStop `json:"stops"`
}

type directionsResponse struct {
	Success    bool                     `json:"success"`
	Agency     string                   `json:"agency"`
	Route      string                   `json:"route"`
	Stop       string                   `json:"stop"`
	Directions []transit.DirectionEntry `json:"directions"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(log *logger.Logger, w http.ResponseWriter, status int, payload interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		log.Printf("error marshaling response: %v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(jsonData); err != nil {
		log.Printf("error writing json response: %v", err)
	}
}

// writeError maps core failures onto the json error envelope: caller errors
// and structured upstream errors are 400, missing topology is 404, upstream
// not-found statuses are 404, everything else is a generic 500.
func writeError(log *logger.Logger, w http.ResponseWriter, err error) {
	var (
		upstreamErr   *transit.UpstreamError
		statusErr     *transit.UpstreamStatusError
		notFound      *transit.NotFoundError
		unsupported   *transit.UnsupportedAgencyError
		missingParam  *transit.MissingParameterError
		validationErr *support.ValidationError
	)
	switch {
	case errors.As(err, &upstreamErr):
		writeJSON(log, w, http.StatusBadRequest, errorResponse{Error: upstreamErr.Message})
	case errors.As(err, &unsupported):
		writeJSON(log, w, http.StatusBadRequest, errorResponse{Error: unsupported.Error()})
	case errors.As(err, &missingParam):
		writeJSON(log, w, http.StatusBadRequest, errorResponse{Error: missingParam.Error()})
	case errors.As(err, &validationErr):
		writeJSON(log, w, http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
	case errors.As(err, &notFound):
		writeJSON(log, w, http.StatusNotFound, errorResponse{Error: notFound.Error()})
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		writeJSON(log, w, http.StatusNotFound, errorResponse{Error: statusErr.Error()})
	default:
		log.Printf("unexpected error handling request: %v", err)
		writeJSON(log, w, http.StatusInternalServerError, errorResponse{Error: "unexpected error handling request"})
	}
}
