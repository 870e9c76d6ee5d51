// Package support accepts rider support messages, validates them and relays
// them to the mail pipeline. Delivery itself happens downstream.
package support

import (
	"encoding/json"
	"fmt"
	logger "log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Message is a rider-submitted support message.
type Message struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required,max=5000"`
}

// Ticket is an accepted support message with its assigned id.
type Ticket struct {
	Id         string    `json:"id"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// Relay is where accepted tickets are sent for delivery.
type Relay interface {
	Relay(ticket *Ticket) error
}

// natsRelay publishes tickets over nats for the mail pipeline.
type natsRelay struct {
	natsConn *nats.Conn
	subject  string
}

func (n *natsRelay) Relay(ticket *Ticket) error {
	jsonData, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("error marshaling ticket to json: error:%v", err)
	}
	return n.natsConn.Publish(n.subject, jsonData)
}

// MakeNatsRelay builds a Relay publishing tickets on subject.
func MakeNatsRelay(natsConn *nats.Conn, subject string) Relay {
	return &natsRelay{
		natsConn: natsConn,
		subject:  subject,
	}
}

// logRelay records tickets in the service log when no relay transport is
// configured; tickets are not delivered anywhere.
type logRelay struct {
	log *logger.Logger
}

func (l *logRelay) Relay(ticket *Ticket) error {
	l.log.Printf("support ticket %s from %s: %s", ticket.Id, ticket.Email, ticket.Subject)
	return nil
}

// MakeLogRelay builds a Relay that only logs tickets.
func MakeLogRelay(log *logger.Logger) Relay {
	return &logRelay{log: log}
}

// Intake validates incoming messages and hands accepted tickets to the relay.
type Intake struct {
	log      *logger.Logger
	validate *validator.Validate
	relay    Relay
	now      func() time.Time
}

// MakeIntake builds an Intake around a relay.
func MakeIntake(log *logger.Logger, relay Relay) *Intake {
	return &Intake{
		log:      log,
		validate: validator.New(),
		relay:    relay,
		now:      time.Now,
	}
}

// Submit validates a message, assigns it a ticket id and relays it. The
// returned error distinguishes validation failures (the caller's fault) from
// relay failures.
func (i *Intake) Submit(message Message) (*Ticket, error) {
	if err := i.validate.Struct(message); err != nil {
		return nil, &ValidationError{cause: err}
	}

	ticket := Ticket{
		Id:         uuid.NewString(),
		Email:      message.Email,
		Subject:    message.Subject,
		Body:       message.Body,
		ReceivedAt: i.now(),
	}
	if err := i.relay.Relay(&ticket); err != nil {
		return nil, fmt.Errorf("relaying ticket %s: %w", ticket.Id, err)
	}
	i.log.Printf("accepted support ticket %s", ticket.Id)
	return &ticket, nil
}

// ValidationError indicates a support message failed validation.
type ValidationError struct {
	cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid support message: %v", e.cause)
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}
