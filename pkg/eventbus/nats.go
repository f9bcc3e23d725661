package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// SubjectPrefix is prepended to the event kind to form the NATS subject.
const SubjectPrefix = "tazos"

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes JSON-encoded events to core NATS subjects.
type NATSPublisher struct {
	conn Conn
	now  func() time.Time
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn, now: time.Now}
}

// Connect dials the NATS servers with reconnect handling.
func Connect(servers string) (*nats.Conn, error) {
	nc, err := nats.Connect(servers,
		nats.Name("tazos-engine"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.WithField("servers", servers).Info("connected to NATS")
	return nc, nil
}

// Subject maps an event kind to its NATS subject.
func Subject(kind string) string {
	return SubjectPrefix + "." + kind
}

// Publish fills in the envelope ID and timestamp and sends the event.
func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := Subject(event.Kind)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"kind":    event.Kind,
		"eventId": event.ID,
		"subject": subject,
	}).Debug("published event")
	return nil
}
