package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"

	"github.com/foyerhq/foyer/internal/domain/outbox"
	"github.com/foyerhq/foyer/internal/obs/retry"
	kafkax "github.com/foyerhq/foyer/internal/repository/kafka"
)

type SignedInPayload struct {
	SignInID string    `json:"sign_in_id"`
	At       time.Time `json:"at"`
}

type SignedOutPayload struct {
	SignInID string    `json:"sign_in_id"`
	At       time.Time `json:"at"`
}

var (
	outboxHandlerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_handler_latency_seconds",
		Help:    "Latency of outbox handlers (publish, http, etc.)",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	outboxHandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_handler_errors_total",
		Help: "Errors in outbox handlers (after retries).",
	}, []string{"kind"})
)

func instrument(kind string, h outbox.KindHandler, pol retry.Policy) outbox.KindHandler {
	tr := otel.Tracer("outbox.handler")
	if pol.Name == "" {
		pol.Name = "outbox_" + kind
	}
	return func(ctx context.Context, data []byte) error {
		ctx, span := tr.Start(ctx, "outbox.handle")
		defer span.End()

		start := time.Now()
		err := retry.Do(ctx, func() error { return h(ctx, data) }, pol)
		outboxHandlerLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			outboxHandlerErrors.WithLabelValues(kind).Inc()
		}
		return err
	}
}

func MakeGlobalOutboxHandler(pub *kafkax.VisitEventsKafka, pol retry.Policy) outbox.GlobalHandler {
	return func(kind outbox.Kind) (outbox.KindHandler, error) {
		switch kind {
		case outbox.KindVisitorSignedIn:
			base := func(ctx context.Context, data []byte) error {
				var p SignedInPayload
				if err := json.Unmarshal(data, &p); err != nil {
					return fmt.Errorf("unmarshal signed-in payload: %w", err)
				}
				return pub.PublishSignedIn(ctx, p.SignInID, p.At)
			}
			return instrument("visitor_signed_in", base, pol), nil
		case outbox.KindVisitorSignedOut:
			base := func(ctx context.Context, data []byte) error {
				var p SignedOutPayload
				if err := json.Unmarshal(data, &p); err != nil {
					return fmt.Errorf("unmarshal signed-out payload: %w", err)
				}
				return pub.PublishSignedOut(ctx, p.SignInID, p.At)
			}
			return instrument("visitor_signed_out", base, pol), nil
		default:
			return nil, fmt.Errorf("unsupported outbox kind: %d", kind)
		}
	}
}
