package actransit

import (
	"context"
	"errors"
	logger "log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/baytransit/nextrain/business/transit"
	"github.com/matryer/is"
)

var testLog = logger.New(os.Stdout, "TEST : ", logger.LstdFlags)

func testClient(server *httptest.Server) *Client {
	return MakeClient(testLog, server.Client(), server.URL, "test-key")
}

func TestFetchPredictions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := is.New(t)
		is.Equal(r.URL.Path, "/getpredictions")
		is.Equal(r.URL.Query().Get("key"), "test-key")
		is.Equal(r.URL.Query().Get("rt"), "NL")
		is.Equal(r.URL.Query().Get("stpid"), "55558")
		is.Equal(r.URL.Query().Get("top"), "3")
		_, _ = w.Write([]byte(`{"bustime-response":{"prd":[
			{"prdtm":"20240615 18:32","stpnm":"Broadway & 14th St","stpid":"55558","rt":"NL","rtdir":"To San Francisco","vid":"1402"}
		]}}`))
	}))
	defer server.Close()

	is := is.New(t)
	predictions, err := testClient(server).FetchPredictions(context.Background(), "55558", "NL")
	is.NoErr(err)
	is.Equal(len(predictions), 1)

	p := predictions[0]
	is.Equal(p.ArrivalTime.UTC(), time.Date(2024, 6, 16, 1, 32, 0, 0, time.UTC))
	is.Equal(p.DepartureTime, p.ArrivalTime.Add(-time.Minute))
	is.Equal(p.StopName, "Broadway & 14th St")
	is.Equal(p.StopId, "55558")
	is.Equal(p.Route, "NL")
	is.Equal(p.Direction, "To San Francisco")
	is.Equal(p.VehicleId, "1402")
	is.True(p.MinutesUntilArrival >= 0)
	is.True(!p.DepartureTime.After(p.ArrivalTime))
}

func TestFetchPredictionsErrorTakesPrecedence(t *testing.T) {
	// the upstream can report an error and predictions in the same envelope;
	// the error wins
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bustime-response":{
			"prd":[{"prdtm":"20240615 18:32","stpnm":"Broadway & 14th St","stpid":"55558","rt":"NL","rtdir":"To San Francisco","vid":"1402"}],
			"error":[{"rt":"NL","stpid":"55558","msg":"No service scheduled"}]
		}}`))
	}))
	defer server.Close()

	_, err := testClient(server).FetchPredictions(context.Background(), "55558", "NL")
	var upstreamErr *transit.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Message != "No service scheduled" {
		t.Errorf("Message = %q, want %q", upstreamErr.Message, "No service scheduled")
	}
}

func TestFetchPredictionsUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server).FetchPredictions(context.Background(), "55558", "NL")
	var statusErr *transit.UpstreamStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected UpstreamStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestFetchPredictionsBadTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bustime-response":{"prd":[
			{"prdtm":"June 15 6:32pm","stpnm":"Broadway & 14th St","stpid":"55558","rt":"NL","rtdir":"To San Francisco","vid":"1402"}
		]}}`))
	}))
	defer server.Close()

	_, err := testClient(server).FetchPredictions(context.Background(), "55558", "NL")
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestFetchRouteStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getdirections":
			_, _ = w.Write([]byte(`{"bustime-response":{"directions":[{"dir":"To San Francisco"},{"dir":"To Eastmont"}]}}`))
		case "/getstops":
			if r.URL.Query().Get("dir") == "To San Francisco" {
				_, _ = w.Write([]byte(`{"bustime-response":{"stops":[
					{"stpid":"51235","stpnm":"MacArthur Blvd & 73rd Ave","lat":37.77,"lon":-122.18}
				]}}`))
				return
			}
			_, _ = w.Write([]byte(`{"bustime-response":{"stops":[
				{"stpid":"51234","stpnm":"MacArthur Blvd & 73rd Ave","lat":37.76,"lon":-122.17}
			]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	is := is.New(t)
	rawStops, err := testClient(server).FetchRouteStops(context.Background(), "NL")
	is.NoErr(err)
	is.Equal(len(rawStops), 2)
	is.Equal(rawStops[0].Id, "51235")
	is.Equal(rawStops[0].Direction, "To San Francisco")
	is.Equal(rawStops[1].Id, "51234")
	is.Equal(rawStops[1].Direction, "To Eastmont")

	consolidated, _ := transit.ConsolidateStops(rawStops)
	is.Equal(len(consolidated), 1)
	is.Equal(consolidated[0].Id, "51235,51234")
}

func TestFetchRouteDirections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getdirections":
			_, _ = w.Write([]byte(`{"bustime-response":{"directions":[{"dir":"To San Francisco"}]}}`))
		case "/getstops":
			_, _ = w.Write([]byte(`{"bustime-response":{"stops":[
				{"stpid":"55558","stpnm":"Broadway & 14th St","lat":37.80,"lon":-122.27}
			]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	is := is.New(t)
	routeDirections, err := testClient(server).FetchRouteDirections(context.Background(), "NL")
	is.NoErr(err)
	is.Equal(len(routeDirections), 1)
	is.Equal(routeDirections[0].Direction, "To San Francisco")
	is.Equal(routeDirections[0].Destination, "To San Francisco")
	is.Equal(routeDirections[0].StopIds, []string{"55558"})
}
