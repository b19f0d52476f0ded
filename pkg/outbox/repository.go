package outbox

import "context"

// Repository defines outbox persistence
type Repository interface {
	SaveAll(ctx context.Context, events []*OutboxEvent) error
	FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkPublished(ctx context.Context, eventID string) error
	IncrementRetry(ctx context.Context, eventID string, errorMsg string) error
}
