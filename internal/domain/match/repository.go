package match

import "context"

// EventRecord is the event-owned, authoritative projection of one match.
// It is fully reconstructed from the canonical match on every write.
type EventRecord struct {
	CanonicalMatch
}

// TeamRecord is the team-owned, derived projection carrying one
// participant's perspective plus denormalized event metadata so a team's
// history reads without touching event partitions.
type TeamRecord struct {
	Identity
	TeamNumber    string
	EventName     string
	Alliance      string
	MyScore       *int
	OppScore      *int
	Won           bool
	PartnerTeams  []string
	OpponentTeams []string
	EventStart    string
	EventEnd      string
	EventLocation string
}

// StoredKey addresses one item in the store.
type StoredKey struct {
	Partition string
	Sort      string
}

// Repository describes match persistence needs from use cases.
type Repository interface {
	PutEventRecord(ctx context.Context, record EventRecord) error
	PutTeamRecord(ctx context.Context, record TeamRecord) error
}

// Sweepable describes the scan/delete surface the reconciliation sweeper
// needs. Kept separate from Repository: steady-state sync never scans.
type Sweepable interface {
	ScanMatchKeys(ctx context.Context) ([]StoredKey, error)
	DeleteByKey(ctx context.Context, key StoredKey) error
}
