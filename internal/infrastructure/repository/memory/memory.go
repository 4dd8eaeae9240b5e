// Package memory provides mutex-guarded in-memory repositories keyed the
// same way as the DynamoDB table. Used by tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/intelicampusai/vex5hub-site/internal/domain/event"
	"github.com/intelicampusai/vex5hub-site/internal/domain/match"
	"github.com/intelicampusai/vex5hub-site/internal/domain/team"
)

// MatchRepository keeps event-owned and team-owned match records keyed by
// their store keys, and satisfies the sweeper's scan/delete surface.
type MatchRepository struct {
	mu          sync.Mutex
	eventItems  map[match.StoredKey]match.EventRecord
	teamItems   map[match.StoredKey]match.TeamRecord
	legacyItems map[match.StoredKey]struct{}
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		eventItems:  make(map[match.StoredKey]match.EventRecord),
		teamItems:   make(map[match.StoredKey]match.TeamRecord),
		legacyItems: make(map[match.StoredKey]struct{}),
	}
}

func (r *MatchRepository) PutEventRecord(_ context.Context, record match.EventRecord) error {
	sortKey, err := match.EventSortKey(record.DivisionID, record.Round, record.Instance, record.Number)
	if err != nil {
		return err
	}
	key := match.StoredKey{Partition: match.EventPartitionKey(record.EventSKU), Sort: sortKey}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventItems[key] = record
	return nil
}

func (r *MatchRepository) PutTeamRecord(_ context.Context, record match.TeamRecord) error {
	sortKey, err := match.TeamSortKey(record.EventSKU, record.DivisionID, record.Round, record.Instance, record.Number)
	if err != nil {
		return err
	}
	key := match.StoredKey{Partition: match.TeamPartitionKey(record.TeamNumber), Sort: sortKey}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.teamItems[key] = record
	return nil
}

// SeedLegacyItem plants an item under an arbitrary key so sweeper tests can
// exercise legacy and unclassifiable shapes.
func (r *MatchRepository) SeedLegacyItem(key match.StoredKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.legacyItems[key] = struct{}{}
}

func (r *MatchRepository) ScanMatchKeys(_ context.Context) ([]match.StoredKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]match.StoredKey, 0, len(r.eventItems)+len(r.teamItems)+len(r.legacyItems))
	for key := range r.eventItems {
		out = append(out, key)
	}
	for key := range r.teamItems {
		out = append(out, key)
	}
	for key := range r.legacyItems {
		out = append(out, key)
	}
	return out, nil
}

func (r *MatchRepository) DeleteByKey(_ context.Context, key match.StoredKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.eventItems, key)
	delete(r.teamItems, key)
	delete(r.legacyItems, key)
	return nil
}

// EventRecords returns a snapshot copy of the stored event-owned records.
func (r *MatchRepository) EventRecords() map[match.StoredKey]match.EventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[match.StoredKey]match.EventRecord, len(r.eventItems))
	for key, record := range r.eventItems {
		out[key] = record
	}
	return out
}

// TeamRecords returns a snapshot copy of the stored team-owned records.
func (r *MatchRepository) TeamRecords() map[match.StoredKey]match.TeamRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[match.StoredKey]match.TeamRecord, len(r.teamItems))
	for key, record := range r.teamItems {
		out[key] = record
	}
	return out
}

// TeamRepository keeps team metadata keyed by team number and season.
type TeamRepository struct {
	mu    sync.Mutex
	items map[string]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{items: make(map[string]team.Team)}
}

func (r *TeamRepository) UpsertMetadata(_ context.Context, _ int, item team.Team) error {
	if err := item.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.Number] = item
	return nil
}

func (r *TeamRepository) Teams() map[string]team.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]team.Team, len(r.items))
	for number, item := range r.items {
		out[number] = item
	}
	return out
}

// EventRepository keeps event metadata keyed by SKU.
type EventRepository struct {
	mu    sync.Mutex
	items map[string]event.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{items: make(map[string]event.Event)}
}

func (r *EventRepository) UpsertEvent(_ context.Context, _ int, item event.Event) error {
	if err := item.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.SKU] = item
	return nil
}

func (r *EventRepository) Events() map[string]event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]event.Event, len(r.items))
	for sku, item := range r.items {
		out[sku] = item
	}
	return out
}
