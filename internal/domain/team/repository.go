package team

import "context"

// Repository describes team persistence needs from use cases. The metadata
// upsert also maintains the rank-ordered secondary index projection.
type Repository interface {
	UpsertMetadata(ctx context.Context, seasonID int, item Team) error
}
