package client

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"
)

// NATS subjects for downstream analytics consumers.
const (
	SubjectScoredInteractions = "popreel.interactions.scored"
	SubjectVideoReady         = "popreel.videos.ready"
)

// Publisher forwards scored events and video lifecycle events to NATS for
// downstream analytics. If the NATS URL is empty or the connection fails,
// publishing becomes a no-op: the queue forward is a bridging concern and
// must never roll back persisted state.
type Publisher struct {
	nc *nats.Conn
}

// NewPublisher connects to NATS. A failed connection disables publishing
// rather than failing startup.
func NewPublisher(natsURL string) *Publisher {
	if natsURL == "" {
		log.Println("nats: no URL configured, event forwarding disabled")
		return &Publisher{}
	}

	nc, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		log.Printf("nats: connection failed, event forwarding disabled: %v", err)
		return &Publisher{}
	}

	log.Println("nats: connected, event forwarding enabled")
	return &Publisher{nc: nc}
}

// Publish sends one JSON-encoded message to the given subject.
// Failures are logged, never propagated.
func (p *Publisher) Publish(subject string, payload any) {
	if p.nc == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("nats: marshal for %s failed: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		log.Printf("nats: publish to %s failed: %v", subject, err)
	}
}

// Conn returns the underlying connection (for health checks). May be nil.
func (p *Publisher) Conn() *nats.Conn {
	return p.nc
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
