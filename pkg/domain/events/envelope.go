// Package events defines the broadcast envelope wrapped around status
// projections and the publisher used to fan them out.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/beaconhq/beacon/pkg/domain/projection"
)

// Envelope message types.
const (
	TypeExecutionUpdate = "execution-update"
	TypeCompletion      = "completion"
	TypeError           = "error"
)

// Envelope is the wire message delivered to connections subscribed to a
// project. Consumers perform no transformation beyond serialization; all
// derivation happens in the projection engine before the payload is wrapped.
type Envelope struct {
	ID        string                       `json:"id"`
	Type      string                       `json:"type"`
	Timestamp time.Time                    `json:"ts"`
	ProjectID string                       `json:"projectId"`
	Payload   *projection.StatusProjection `json:"payload"`
}

// NewEnvelope wraps a projection for broadcast. The envelope type follows the
// projection's status: terminal completion and error get their own types so
// subscribers can react without inspecting the payload.
func NewEnvelope(p *projection.StatusProjection) Envelope {
	envelopeType := TypeExecutionUpdate
	switch p.Status {
	case projection.StatusCompleted:
		envelopeType = TypeCompletion
	case projection.StatusError:
		envelopeType = TypeError
	}
	return Envelope{
		ID:        uuid.NewString(),
		Type:      envelopeType,
		Timestamp: time.Now().UTC(),
		ProjectID: p.ProjectID,
		Payload:   p,
	}
}

// Handler processes published envelopes.
type Handler func(env Envelope) error

// Publisher broadcasts envelopes to subscribers.
type Publisher interface {
	// Publish sends an envelope to all registered subscribers.
	Publish(env Envelope) error

	// Subscribe registers a handler for envelopes.
	Subscribe(handler Handler)
}
