package kafka

import (
	"context"
	"time"

	"github.com/foyerhq/foyer/internal/domain/kafka"
)

// VisitEventsKafka publishes visitor lifecycle events for the webhook
// dispatcher and other downstream consumers. Values are JSON, keyed by the
// sign-in record id so events for one visit stay ordered.
type VisitEventsKafka struct {
	p *Producer
}

func NewVisitEventsKafka(p *Producer) *VisitEventsKafka { return &VisitEventsKafka{p: p} }

var _ kafka.VisitEvents = (*VisitEventsKafka)(nil)

type visitEvent struct {
	Type     string    `json:"type"`
	SignInID string    `json:"sign_in_id"`
	At       time.Time `json:"at"`
}

func (e *VisitEventsKafka) PublishSignedIn(ctx context.Context, signInID string, at time.Time) error {
	return e.p.PublishJSON(ctx, []byte(signInID), visitEvent{
		Type:     "visitor.signed_in",
		SignInID: signInID,
		At:       at,
	})
}

func (e *VisitEventsKafka) PublishSignedOut(ctx context.Context, signInID string, at time.Time) error {
	return e.p.PublishJSON(ctx, []byte(signInID), visitEvent{
		Type:     "visitor.signed_out",
		SignInID: signInID,
		At:       at,
	})
}
