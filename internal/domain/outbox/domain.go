package outbox

import (
	"context"
	"time"
)

type Status string

type Kind int

const (
	KindVisitorSignedIn  Kind = 1
	KindVisitorSignedOut Kind = 2
)

type Message struct {
	IdempotencyKey string
	Kind           Kind
	Data           []byte
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Repository interface {
	// Enqueue stores a message; it joins the caller's transaction when one is
	// in the context, so events commit atomically with the state change that
	// caused them.
	Enqueue(ctx context.Context, key string, kind Kind, data []byte) error

	PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]Message, error)

	MarkSuccess(ctx context.Context, keys []string) error
}

type KindHandler func(ctx context.Context, data []byte) error

type GlobalHandler func(kind Kind) (KindHandler, error)
