package event

import "context"

// Repository describes event persistence needs from use cases.
type Repository interface {
	UpsertEvent(ctx context.Context, seasonID int, item Event) error
}
