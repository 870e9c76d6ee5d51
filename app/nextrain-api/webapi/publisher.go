package webapi

import (
	"encoding/json"
	"fmt"
	logger "log"
	"time"

	"github.com/baytransit/nextrain/business/transit"
	"github.com/nats-io/nats.go"
)

// predictionEvent describes one served prediction response, published for
// downstream consumers (analytics, edge cache warmers).
type predictionEvent struct {
	Agency      string               `json:"agency"`
	Stop        string               `json:"stop"`
	Route       string               `json:"route"`
	ServedAt    time.Time            `json:"served_at"`
	Predictions []transit.Prediction `json:"predictions"`
}

// predictionPublicationDestination is where served predictions should be sent.
type predictionPublicationDestination interface {
	Publish(event *predictionEvent) error
}

// natsPredictionPublicationDestination sends prediction events over nats
type natsPredictionPublicationDestination struct {
	natsConn          *nats.Conn
	predictionSubject string
}

func (n *natsPredictionPublicationDestination) Publish(event *predictionEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling prediction event to json: error:%v", err)
	}
	return n.natsConn.Publish(n.predictionSubject, jsonData)
}

// PredictionPublisher publishes served prediction responses without blocking
// the response path. A nil publisher is valid and publishes nothing.
type PredictionPublisher struct {
	log         *logger.Logger
	destination predictionPublicationDestination
}

// MakePredictionPublisher builds a publisher sending events over natsConn.
func MakePredictionPublisher(log *logger.Logger, natsConn *nats.Conn, predictionSubject string) *PredictionPublisher {
	return &PredictionPublisher{
		log: log,
		destination: &natsPredictionPublicationDestination{
			natsConn:          natsConn,
			predictionSubject: predictionSubject,
		},
	}
}

// publishServed fires the event in the background; failures are logged only.
func (p *PredictionPublisher) publishServed(event predictionEvent) {
	if p == nil {
		return
	}
	go func() {
		if err := p.destination.Publish(&event); err != nil {
			p.log.Printf("error publishing prediction event: %v", err)
		}
	}()
}
