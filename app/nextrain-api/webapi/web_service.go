package webapi

import (
	"context"
	"fmt"
	logger "log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

// ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

// createRouter wires every endpoint onto a mux router.
func createRouter(handlers *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	r.HandleFunc("/v1/predictions", handlers.getPredictions).Methods(http.MethodGet)
	r.HandleFunc("/v1/agencies/{agency}/routes/{route}/stops", handlers.getRouteStops).Methods(http.MethodGet)
	r.HandleFunc("/v1/agencies/{agency}/routes/{route}/stops/{stop}/directions", handlers.getStopDirections).Methods(http.MethodGet)
	r.HandleFunc("/v1/stations", handlers.getStations).Methods(http.MethodGet)
	r.HandleFunc("/v1/schedule", handlers.getSchedule).Methods(http.MethodGet)
	r.HandleFunc("/v1/support", handlers.postSupport).Methods(http.MethodPost)
	return r
}

// createServer creates configured http.Server for the prediction api
func createServer(handlers *Handlers, httpPort int) *http.Server {
	srv := &http.Server{
		Addr: strings.Join([]string{"0.0.0.0", strconv.Itoa(httpPort)}, ":"),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      createRouter(handlers),
	}
	return srv
}

// RunWebService starts the prediction api and terminates on shutdown signal.
func RunWebService(log *logger.Logger, handlers *Handlers, httpPort int, shutdown chan os.Signal) error {
	srv := createServer(handlers, httpPort)
	log.Printf("Starting server on port %d", httpPort)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("ending webservice on shutdown signal %v", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
