package dynamo

import (
	"context"
	"fmt"

	"github.com/intelicampusai/vex5hub-site/internal/domain/event"
)

// EventRepository stores event metadata under the season partition, sorted
// by start date so a season's calendar reads as one ordered query.
type EventRepository struct {
	store *Store
}

func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

type eventDivisionItem struct {
	ID   int    `dynamodbav:"id"`
	Name string `dynamodbav:"name"`
}

type eventMetadataItem struct {
	PK            string              `dynamodbav:"PK"`
	SK            string              `dynamodbav:"SK"`
	EventSKU      string              `dynamodbav:"event_sku"`
	ExternalID    int64               `dynamodbav:"external_id,omitempty"`
	EventName     string              `dynamodbav:"event_name"`
	Level         string              `dynamodbav:"level,omitempty"`
	Start         string              `dynamodbav:"start,omitempty"`
	End           string              `dynamodbav:"end,omitempty"`
	Location      string              `dynamodbav:"location,omitempty"`
	Status        string              `dynamodbav:"status"`
	Divisions     []eventDivisionItem `dynamodbav:"divisions"`
	SchemaVersion int                 `dynamodbav:"schema_version"`
	UpdatedAt     string              `dynamodbav:"updated_at"`
}

func (r *EventRepository) UpsertEvent(ctx context.Context, seasonID int, item event.Event) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validate event %s: %w", item.SKU, err)
	}

	divisions := make([]eventDivisionItem, 0, len(item.Divisions))
	for _, d := range item.Divisions {
		divisions = append(divisions, eventDivisionItem{ID: d.ID, Name: d.Name})
	}

	record := eventMetadataItem{
		PK:            fmt.Sprintf("SEASON#%d", seasonID),
		SK:            fmt.Sprintf("EVENT#%s#%s", item.Start, item.SKU),
		EventSKU:      item.SKU,
		ExternalID:    item.ExternalID,
		EventName:     item.Name,
		Level:         item.Level,
		Start:         item.Start,
		End:           item.End,
		Location:      item.Location.String(),
		Status:        string(item.StatusAt(r.store.now())),
		Divisions:     divisions,
		SchemaVersion: schemaVersion,
		UpdatedAt:     r.store.timestamp(),
	}

	if err := r.store.putItem(ctx, record); err != nil {
		return fmt.Errorf("put event metadata sku=%s: %w", item.SKU, err)
	}
	return nil
}
