package usecase

import (
	"context"
	"fmt"

	"github.com/intelicampusai/vex5hub-site/internal/domain/event"
	"github.com/intelicampusai/vex5hub-site/internal/domain/match"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

// MatchWriter turns one canonical match into its two stored projections:
// the authoritative event-owned record and one team-owned record per
// participant. Both writes are unconditional upserts; the pair is one
// logical operation but never a transaction, so a failure between the two
// leaves only re-derivable state behind.
type MatchWriter struct {
	matches match.Repository
	logger  *logging.Logger
}

func NewMatchWriter(matches match.Repository, logger *logging.Logger) *MatchWriter {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchWriter{matches: matches, logger: logger}
}

// Write persists the event-owned record and every participant's team-owned
// record. Event metadata is embedded into the team records at write time so
// a team's history reads without a join.
func (w *MatchWriter) Write(ctx context.Context, m match.CanonicalMatch, ev event.Event) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := w.matches.PutEventRecord(ctx, match.EventRecord{CanonicalMatch: m}); err != nil {
		return fmt.Errorf("put event match record sku=%s: %w", m.EventSKU, err)
	}

	for _, teamNumber := range m.Participants() {
		record, err := buildTeamRecord(m, ev, teamNumber)
		if err != nil {
			return err
		}
		if err := w.matches.PutTeamRecord(ctx, record); err != nil {
			return fmt.Errorf("put team match record team=%s sku=%s: %w", teamNumber, m.EventSKU, err)
		}
	}
	return nil
}

func buildTeamRecord(m match.CanonicalMatch, ev event.Event, teamNumber string) (match.TeamRecord, error) {
	own, opp, ok := m.AllianceOf(teamNumber)
	if !ok {
		return match.TeamRecord{}, fmt.Errorf("%w: team %s is not a participant of %s", ErrInvalidInput, teamNumber, m.EventSKU)
	}

	won := own.Score != nil && opp.Score != nil && *own.Score > *opp.Score

	partners := make([]string, 0, len(own.Teams))
	for _, t := range own.Teams {
		if t != teamNumber {
			partners = append(partners, t)
		}
	}
	opponents := make([]string, len(opp.Teams))
	copy(opponents, opp.Teams)

	return match.TeamRecord{
		Identity:      m.Identity,
		TeamNumber:    teamNumber,
		EventName:     m.EventName,
		Alliance:      own.Color,
		MyScore:       own.Score,
		OppScore:      opp.Score,
		Won:           won,
		PartnerTeams:  partners,
		OpponentTeams: opponents,
		EventStart:    ev.Start,
		EventEnd:      ev.End,
		EventLocation: ev.Location.String(),
	}, nil
}
