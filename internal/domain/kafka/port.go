package kafka

import (
	"context"
	"time"
)

type VisitEvents interface {
	PublishSignedIn(ctx context.Context, signInID string, at time.Time) error
	PublishSignedOut(ctx context.Context, signInID string, at time.Time) error
}
