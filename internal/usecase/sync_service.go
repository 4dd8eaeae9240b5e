package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/intelicampusai/vex5hub-site/internal/domain/event"
	"github.com/intelicampusai/vex5hub-site/internal/domain/match"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

type StageError struct {
	Stage   string
	Message string
}

// Summary is the structured result of one sync run. Partial progress is
// always valid state; nothing is rolled back.
type Summary struct {
	Timestamp      time.Time
	Updates        []string
	Errors         []StageError
	Status         Status
	TeamsSynced    int
	MatchesWritten int
}

type SyncConfig struct {
	SeasonID int
	Workers  int
	Deadline time.Duration
}

// SyncService runs the full update cycle: season events, the tracked
// roster with rank index and qualification flags, then every tracked
// team's match history fanned out over a bounded worker pool. Stages are
// isolated; one failing stage is reported but never blocks the others.
type SyncService struct {
	provider    ResultsProvider
	credentials CredentialSource
	roster      *RosterService
	writer      *MatchWriter
	events      event.Repository
	invalidator CacheInvalidator
	cfg         SyncConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewSyncService(
	provider ResultsProvider,
	credentials CredentialSource,
	roster *RosterService,
	writer *MatchWriter,
	events event.Repository,
	invalidator CacheInvalidator,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &SyncService{
		provider:    provider,
		credentials: credentials,
		roster:      roster,
		writer:      writer,
		events:      events,
		invalidator: invalidator,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one sync pass and reports a stage-by-stage summary. A
// missing credential is the only condition that aborts before any stage.
func (s *SyncService) Run(ctx context.Context) (Summary, error) {
	ctx, span := startStageSpan(ctx, "run", attribute.Int("season_id", s.cfg.SeasonID))
	defer span.End()

	// Soft budget: consulted between work units, never canceling a write
	// already in flight.
	var deadline time.Time
	if s.cfg.Deadline > 0 {
		deadline = s.now().Add(s.cfg.Deadline)
	}

	summary := Summary{Timestamp: s.now().UTC(), Status: StatusFailed}

	if _, err := s.credentials.APIKey(ctx); err != nil {
		summary.Errors = append(summary.Errors, StageError{Stage: "credential", Message: err.Error()})
		return summary, fmt.Errorf("%w: %s", ErrMissingCredential, err)
	}

	if count, err := s.syncEvents(ctx); err != nil {
		s.logger.ErrorContext(ctx, "event sync stage failed", "error", err)
		summary.Errors = append(summary.Errors, StageError{Stage: "events", Message: err.Error()})
	} else {
		s.logger.InfoContext(ctx, "event sync stage complete", "events", count)
		summary.Updates = append(summary.Updates, "events")
	}

	tracked, err := s.roster.SyncTeams(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "team sync stage failed", "error", err)
		summary.Errors = append(summary.Errors, StageError{Stage: "teams", Message: err.Error()})
	} else {
		summary.Updates = append(summary.Updates, "teams")
	}
	summary.TeamsSynced = len(tracked)

	if len(tracked) > 0 {
		written, err := s.syncMatches(ctx, tracked, deadline)
		summary.MatchesWritten = written
		if err != nil {
			s.logger.ErrorContext(ctx, "match sync stage failed", "error", err, "written", written)
			summary.Errors = append(summary.Errors, StageError{Stage: "matches", Message: err.Error()})
		} else {
			summary.Updates = append(summary.Updates, "matches")
		}
	}

	switch {
	case len(summary.Errors) == 0:
		summary.Status = StatusOK
	case len(summary.Updates) > 0:
		summary.Status = StatusPartial
	default:
		summary.Status = StatusFailed
	}

	if s.invalidator != nil && len(summary.Updates) > 0 {
		if err := s.invalidator.Invalidate(ctx, []string{"/*"}); err != nil {
			s.logger.WarnContext(ctx, "cache invalidation failed", "error", err)
		}
	}

	return summary, nil
}

// syncEvents upserts the season's event window: everything starting today
// or later, per the source's sliding horizon.
func (s *SyncService) syncEvents(ctx context.Context) (int, error) {
	ctx, span := startStageSpan(ctx, "events")
	defer span.End()

	startFrom := s.now().UTC().Format("2006-01-02")
	items, err := s.provider.FetchSeasonEvents(ctx, s.cfg.SeasonID, startFrom)
	if err != nil {
		return 0, fmt.Errorf("fetch season events season=%d: %w", s.cfg.SeasonID, err)
	}

	count := 0
	for _, item := range items {
		evt := mapExternalEvent(item)
		if err := evt.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skipping malformed event", "sku", item.SKU, "error", err)
			continue
		}
		if err := s.events.UpsertEvent(ctx, s.cfg.SeasonID, evt); err != nil {
			return count, fmt.Errorf("upsert event sku=%s: %w", evt.SKU, err)
		}
		count++
	}
	return count, nil
}

// syncMatches pages through every tracked team's season history. A match
// seen from two participants' histories is written once; the in-run dedup
// set is keyed by the match identity tuple.
func (s *SyncService) syncMatches(ctx context.Context, teamNumbers []string, deadline time.Time) (int, error) {
	ctx, span := startStageSpan(ctx, "matches", attribute.Int("teams", len(teamNumbers)))
	defer span.End()

	dedup := newIdentitySet()
	eventCache := newEventCache(s.provider, s.logger)

	var written atomic.Int64
	var failedTeams atomic.Int32
	var skippedTeams atomic.Int32

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	expired := false
	issued := 0

	var workers sync.WaitGroup
	for _, number := range teamNumbers {
		// Past the deadline no new team is started; teams already handed
		// to the pool run their writes to completion.
		if !deadline.IsZero() && s.now().After(deadline) {
			expired = true
			break
		}
		if ctx.Err() != nil {
			break
		}

		issued++
		number := number
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			count, err := s.syncTeamMatches(ctx, number, dedup, eventCache)
			written.Add(int64(count))
			switch {
			case err == nil:
			case errors.Is(err, ErrNotFound):
				skippedTeams.Add(1)
				s.logger.WarnContext(ctx, "team not found upstream, skipping", "team", number)
			case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
				skippedTeams.Add(1)
			default:
				failedTeams.Add(1)
				s.logger.ErrorContext(ctx, "team match sync failed", "team", number, "error", err)
			}
		}); err != nil {
			workers.Done()
			return int(written.Load()), fmt.Errorf("submit team sync task: %w", err)
		}
	}
	workers.Wait()

	total := int(written.Load())
	s.logger.InfoContext(ctx, "match sync complete",
		"teams", len(teamNumbers),
		"teams_issued", issued,
		"matches_written", total,
		"failed_teams", failedTeams.Load(),
		"skipped_teams", skippedTeams.Load(),
	)

	if expired {
		return total, fmt.Errorf("run deadline reached after %d of %d teams", issued, len(teamNumbers))
	}
	if failed := failedTeams.Load(); failed > 0 && total == 0 {
		return total, fmt.Errorf("match sync failed for all %d attempted teams", failed)
	}
	return total, nil
}

func (s *SyncService) syncTeamMatches(ctx context.Context, teamNumber string, dedup *identitySet, cache *eventCache) (int, error) {
	teamID, err := s.provider.FetchTeamIDByNumber(ctx, teamNumber)
	if err != nil {
		return 0, err
	}

	items, err := s.provider.FetchTeamMatches(ctx, teamID, s.cfg.SeasonID)
	if err != nil {
		return 0, fmt.Errorf("fetch matches team=%s: %w", teamNumber, err)
	}

	written := 0
	for _, item := range items {
		evt := cache.get(ctx, item.EventSKU)
		m, err := mapExternalMatch(item, evt)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping malformed match",
				"team", teamNumber, "sku", item.EventSKU, "error", err)
			continue
		}
		if !dedup.add(m.Identity) {
			continue
		}
		if err := s.writer.Write(ctx, m, evt); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func mapExternalEvent(in ExternalEvent) event.Event {
	divisions := make([]event.Division, 0, len(in.Divisions))
	for _, d := range in.Divisions {
		divisions = append(divisions, event.Division{ID: d.ID, Name: d.Name})
	}
	return event.Event{
		SKU:        in.SKU,
		ExternalID: in.ID,
		Name:       in.Name,
		Level:      in.Level,
		Start:      in.Start,
		End:        in.End,
		Location: event.Location{
			Venue:   in.Location.Venue,
			City:    in.Location.City,
			Region:  in.Location.Region,
			Country: in.Location.Country,
		},
		Divisions: divisions,
	}
}

// mapExternalMatch resolves the canonical identity at fetch time. A missing
// division id falls back to the event's first known division, never to a
// later repair pass.
func mapExternalMatch(in ExternalMatch, evt event.Event) (match.CanonicalMatch, error) {
	round, err := match.RoundFromCode(in.RoundCode)
	if err != nil {
		return match.CanonicalMatch{}, err
	}

	divisionID := in.DivisionID
	if divisionID <= 0 {
		if len(evt.Divisions) > 0 {
			divisionID = evt.Divisions[0].ID
		} else {
			divisionID = 1
		}
	}

	m := match.CanonicalMatch{
		Identity: match.Identity{
			EventSKU:   in.EventSKU,
			DivisionID: divisionID,
			Round:      round,
			Instance:   in.Instance,
			Number:     in.Number,
		},
		EventName: in.EventName,
		Field:     in.Field,
		Scheduled: in.Scheduled,
		Started:   in.Started,
		Red:       match.Alliance{Color: match.AllianceRed, Teams: in.RedTeams, Score: in.RedScore},
		Blue:      match.Alliance{Color: match.AllianceBlue, Teams: in.BlueTeams, Score: in.BlueScore},
	}
	if err := m.Validate(); err != nil {
		return match.CanonicalMatch{}, err
	}
	return m, nil
}

// identitySet is the in-run dedup set shared by all workers.
type identitySet struct {
	mu   sync.Mutex
	seen map[match.Identity]bool
}

func newIdentitySet() *identitySet {
	return &identitySet{seen: make(map[match.Identity]bool)}
}

// add reports whether the identity was newly recorded.
func (s *identitySet) add(id match.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[id] {
		return false
	}
	s.seen[id] = true
	return true
}

// eventCache memoizes event metadata lookups per run so each SKU is fetched
// once regardless of how many team histories reference it.
type eventCache struct {
	provider ResultsProvider
	logger   *logging.Logger
	mu       sync.Mutex
	bySKU    map[string]event.Event
}

func newEventCache(provider ResultsProvider, logger *logging.Logger) *eventCache {
	return &eventCache{
		provider: provider,
		logger:   logger,
		bySKU:    make(map[string]event.Event),
	}
}

func (c *eventCache) get(ctx context.Context, sku string) event.Event {
	c.mu.Lock()
	if evt, ok := c.bySKU[sku]; ok {
		c.mu.Unlock()
		return evt
	}
	c.mu.Unlock()

	external, err := c.provider.FetchEventBySKU(ctx, sku)
	evt := event.Event{SKU: sku}
	if err != nil {
		c.logger.WarnContext(ctx, "event metadata lookup failed, denormalizing without it", "sku", sku, "error", err)
	} else {
		evt = mapExternalEvent(external)
	}

	c.mu.Lock()
	c.bySKU[sku] = evt
	c.mu.Unlock()
	return evt
}
