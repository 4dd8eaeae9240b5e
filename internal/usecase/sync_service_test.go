package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/intelicampusai/vex5hub-site/internal/domain/match"
	"github.com/intelicampusai/vex5hub-site/internal/infrastructure/repository/memory"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

type fakeProvider struct {
	events      []ExternalEvent
	eventsErr   error
	eventBySKU  map[string]ExternalEvent
	teamNumbers map[int64][]string
	skills      map[string][]ExternalSkillsEntry
	skillsErr   error
	teamIDs     map[string]int64
	matches     map[int64][]ExternalMatch
	matchesErr  error
}

func (f *fakeProvider) FetchSeasonEvents(context.Context, int, string) ([]ExternalEvent, error) {
	return f.events, f.eventsErr
}

func (f *fakeProvider) FetchEventBySKU(_ context.Context, sku string) (ExternalEvent, error) {
	if evt, ok := f.eventBySKU[sku]; ok {
		return evt, nil
	}
	return ExternalEvent{}, fmt.Errorf("%w: event sku=%s", ErrNotFound, sku)
}

func (f *fakeProvider) FetchEventTeamNumbers(_ context.Context, eventID int64) ([]string, error) {
	return f.teamNumbers[eventID], nil
}

func (f *fakeProvider) FetchSkillsStandings(_ context.Context, _ int, grade string) ([]ExternalSkillsEntry, error) {
	if f.skillsErr != nil {
		return nil, f.skillsErr
	}
	return f.skills[grade], nil
}

func (f *fakeProvider) FetchTeamIDByNumber(_ context.Context, number string) (int64, error) {
	id, ok := f.teamIDs[number]
	if !ok {
		return 0, fmt.Errorf("%w: team number=%s", ErrNotFound, number)
	}
	return id, nil
}

func (f *fakeProvider) FetchTeamMatches(_ context.Context, teamID int64, _ int) ([]ExternalMatch, error) {
	if f.matchesErr != nil {
		return nil, f.matchesErr
	}
	return f.matches[teamID], nil
}

type fakeCredentials struct{ err error }

func (f fakeCredentials) APIKey(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token", nil
}

type countingMatchRepo struct {
	inner       match.Repository
	eventWrites atomic.Int32
	teamWrites  atomic.Int32
}

func (c *countingMatchRepo) PutEventRecord(ctx context.Context, record match.EventRecord) error {
	c.eventWrites.Add(1)
	return c.inner.PutEventRecord(ctx, record)
}

func (c *countingMatchRepo) PutTeamRecord(ctx context.Context, record match.TeamRecord) error {
	c.teamWrites.Add(1)
	return c.inner.PutTeamRecord(ctx, record)
}

type recordingInvalidator struct {
	paths [][]string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, paths []string) error {
	r.paths = append(r.paths, paths)
	return nil
}

func sharedMatch() ExternalMatch {
	return ExternalMatch{
		EventSKU:   "RE-V5RC-25-0100",
		EventName:  "City Champs",
		DivisionID: 1,
		RoundCode:  2,
		Instance:   1,
		Number:     7,
		RedTeams:   []string{"111A", "222B"},
		BlueTeams:  []string{"333C"},
		RedScore:   intPtr(40),
		BlueScore:  intPtr(35),
	}
}

func newTestProvider() *fakeProvider {
	shared := sharedMatch()
	return &fakeProvider{
		events: []ExternalEvent{
			{ID: 1, SKU: "RE-V5RC-25-0100", Name: "City Champs", Level: "Regional",
				Start: "2026-02-01T00:00:00Z", End: "2026-02-02T00:00:00Z",
				Divisions: []ExternalDivision{{ID: 1, Name: "Default"}}},
		},
		eventBySKU: map[string]ExternalEvent{
			"RE-V5RC-25-0100": {ID: 1, SKU: "RE-V5RC-25-0100", Name: "City Champs",
				Divisions: []ExternalDivision{{ID: 1, Name: "Default"}}},
		},
		skills: map[string][]ExternalSkillsEntry{
			"High School": {
				{TeamNumber: "111A", TeamName: "Alpha", Grade: "High School", Rank: 1, Score: 120},
				{TeamNumber: "222B", TeamName: "Beta", Grade: "High School", Rank: 2, Score: 110},
			},
		},
		teamIDs: map[string]int64{"111A": 10, "222B": 11},
		matches: map[int64][]ExternalMatch{
			// The same match appears in both histories.
			10: {shared},
			11: {shared},
		},
	}
}

func newTestSync(provider ResultsProvider, creds CredentialSource, repo match.Repository) (*SyncService, *memory.EventRepository, *memory.TeamRepository, *recordingInvalidator) {
	events := memory.NewEventRepository()
	teams := memory.NewTeamRepository()
	invalidator := &recordingInvalidator{}

	roster := NewRosterService(provider, teams, RosterConfig{
		SeasonID:       190,
		SkillsSeasonID: 197,
		TopTeamCount:   50,
		GradeLevels:    []string{"High School"},
	}, logging.NewNop())

	svc := NewSyncService(
		provider,
		creds,
		roster,
		NewMatchWriter(repo, logging.NewNop()),
		events,
		invalidator,
		SyncConfig{SeasonID: 190, Workers: 2},
		logging.NewNop(),
	)
	return svc, events, teams, invalidator
}

func TestRunWritesEachMatchOnce(t *testing.T) {
	repo := &countingMatchRepo{inner: memory.NewMatchRepository()}
	svc, events, teams, invalidator := newTestSync(newTestProvider(), fakeCredentials{}, repo)

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Status != StatusOK {
		t.Fatalf("status = %s, want ok (errors: %+v)", summary.Status, summary.Errors)
	}
	if summary.TeamsSynced != 2 {
		t.Fatalf("teams synced = %d, want 2", summary.TeamsSynced)
	}
	if got := repo.eventWrites.Load(); got != 1 {
		t.Fatalf("event record written %d times, want once despite two histories", got)
	}
	if got := repo.teamWrites.Load(); got != 3 {
		t.Fatalf("team records written %d times, want one per participant", got)
	}
	if summary.MatchesWritten != 1 {
		t.Fatalf("matches written = %d, want 1", summary.MatchesWritten)
	}
	if len(events.Events()) != 1 {
		t.Fatalf("stored %d events, want 1", len(events.Events()))
	}
	if len(teams.Teams()) != 2 {
		t.Fatalf("stored %d teams, want 2", len(teams.Teams()))
	}
	if len(invalidator.paths) != 1 {
		t.Fatalf("cache invalidated %d times, want 1", len(invalidator.paths))
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := memory.NewMatchRepository()
	svc, _, _, _ := newTestSync(newTestProvider(), fakeCredentials{}, store)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstEvents := store.EventRecords()
	firstTeams := store.TeamRecords()

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(store.EventRecords()) != len(firstEvents) {
		t.Fatalf("second run changed event record count: %d -> %d", len(firstEvents), len(store.EventRecords()))
	}
	if len(store.TeamRecords()) != len(firstTeams) {
		t.Fatalf("second run changed team record count: %d -> %d", len(firstTeams), len(store.TeamRecords()))
	}
}

func TestRunAbortsWithoutCredential(t *testing.T) {
	repo := &countingMatchRepo{inner: memory.NewMatchRepository()}
	creds := fakeCredentials{err: fmt.Errorf("%w: secret unavailable", ErrMissingCredential)}
	svc, _, _, invalidator := newTestSync(newTestProvider(), creds, repo)

	summary, err := svc.Run(context.Background())
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("got %v, want ErrMissingCredential", err)
	}
	if summary.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", summary.Status)
	}
	if got := repo.eventWrites.Load() + repo.teamWrites.Load(); got != 0 {
		t.Fatalf("wrote %d records after credential failure, want 0", got)
	}
	if len(invalidator.paths) != 0 {
		t.Fatal("cache invalidated after aborted run")
	}
}

func TestRunIsolatesEventStageFailure(t *testing.T) {
	provider := newTestProvider()
	provider.eventsErr = fmt.Errorf("upstream 500")
	// Discovery fallback also hits FetchSeasonEvents; qualification proceeds
	// without flags and team sync still runs.
	svc, _, teams, _ := newTestSync(provider, fakeCredentials{}, memory.NewMatchRepository())

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Status != StatusPartial {
		t.Fatalf("status = %s, want partial", summary.Status)
	}
	if len(teams.Teams()) != 2 {
		t.Fatalf("team stage did not run: stored %d teams", len(teams.Teams()))
	}
	foundEventsError := false
	for _, stageErr := range summary.Errors {
		if stageErr.Stage == "events" {
			foundEventsError = true
		}
	}
	if !foundEventsError {
		t.Fatalf("missing events stage error in %+v", summary.Errors)
	}
}

func TestRunSkipsUnknownTeamsUpstream(t *testing.T) {
	provider := newTestProvider()
	delete(provider.teamIDs, "222B")
	repo := &countingMatchRepo{inner: memory.NewMatchRepository()}
	svc, _, _, _ := newTestSync(provider, fakeCredentials{}, repo)

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Status != StatusOK {
		t.Fatalf("status = %s, want ok; a vanished team is a skip, not a failure", summary.Status)
	}
	if summary.MatchesWritten != 1 {
		t.Fatalf("matches written = %d, want 1 from the remaining history", summary.MatchesWritten)
	}
}

func TestRunReportsFailureWhenAllTeamsFail(t *testing.T) {
	provider := newTestProvider()
	provider.matchesErr = fmt.Errorf("upstream 500")
	svc, _, _, _ := newTestSync(provider, fakeCredentials{}, memory.NewMatchRepository())

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Status != StatusPartial {
		t.Fatalf("status = %s, want partial (events and teams still synced)", summary.Status)
	}
	foundMatchesError := false
	for _, stageErr := range summary.Errors {
		if stageErr.Stage == "matches" {
			foundMatchesError = true
		}
	}
	if !foundMatchesError {
		t.Fatalf("missing matches stage error in %+v", summary.Errors)
	}
}

// steppedClock advances one step per reading, making the run deadline
// deterministic in tests.
func steppedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	calls := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := start.Add(time.Duration(calls) * step)
		calls++
		return t
	}
}

func TestRunDeadlineStopsIssuingNewTeams(t *testing.T) {
	repo := &countingMatchRepo{inner: memory.NewMatchRepository()}
	svc, _, _, _ := newTestSync(newTestProvider(), fakeCredentials{}, repo)

	// Clock readings, one minute apart: deadline base, summary timestamp,
	// event window start, then one per-team check. With a 3m30s budget the
	// first team starts and the second is never issued.
	svc.now = steppedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Minute)
	svc.cfg.Deadline = 3*time.Minute + 30*time.Second

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Status != StatusPartial {
		t.Fatalf("status = %s, want partial after deadline expiry", summary.Status)
	}
	if summary.MatchesWritten != 1 {
		t.Fatalf("matches written = %d, want 1 from the team issued before expiry", summary.MatchesWritten)
	}
	// The issued team's writes all land: the deadline stops new teams, it
	// never cancels work already handed to the pool.
	if got := repo.eventWrites.Load(); got != 1 {
		t.Fatalf("event writes = %d, want 1", got)
	}
	if got := repo.teamWrites.Load(); got != 3 {
		t.Fatalf("team writes = %d, want all 3 participants of the in-flight match", got)
	}
	foundDeadlineError := false
	for _, stageErr := range summary.Errors {
		if stageErr.Stage == "matches" && strings.Contains(stageErr.Message, "deadline") {
			foundDeadlineError = true
		}
	}
	if !foundDeadlineError {
		t.Fatalf("missing deadline stage error in %+v", summary.Errors)
	}
	for _, update := range summary.Updates {
		if update == "matches" {
			t.Fatal("matches stage reported complete despite deadline expiry")
		}
	}
}

func TestMapExternalMatchDivisionFallback(t *testing.T) {
	in := sharedMatch()
	in.DivisionID = 0

	m, err := mapExternalMatch(in, mapExternalEvent(ExternalEvent{
		SKU:       in.EventSKU,
		Name:      "City Champs",
		Divisions: []ExternalDivision{{ID: 3, Name: "Science"}},
	}))
	if err != nil {
		t.Fatalf("mapExternalMatch: %v", err)
	}
	if m.DivisionID != 3 {
		t.Fatalf("division = %d, want first known division 3", m.DivisionID)
	}

	m, err = mapExternalMatch(in, mapExternalEvent(ExternalEvent{SKU: in.EventSKU, Name: "City Champs"}))
	if err != nil {
		t.Fatalf("mapExternalMatch without divisions: %v", err)
	}
	if m.DivisionID != 1 {
		t.Fatalf("division = %d, want fallback 1", m.DivisionID)
	}
}

func TestMapExternalMatchRejectsUnknownRound(t *testing.T) {
	in := sharedMatch()
	in.RoundCode = 99

	_, err := mapExternalMatch(in, mapExternalEvent(ExternalEvent{SKU: in.EventSKU}))
	if !errors.Is(err, match.ErrUnknownRound) {
		t.Fatalf("got %v, want ErrUnknownRound", err)
	}
}
