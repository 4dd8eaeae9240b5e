package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/intelicampusai/vex5hub-site/internal/domain/event"
	"github.com/intelicampusai/vex5hub-site/internal/domain/team"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

type RosterConfig struct {
	SeasonID       int
	SkillsSeasonID int
	TopTeamCount   int
	GradeLevels    []string
	WorldsSKUs     []string
}

// RosterService maintains the tracked team set from the skills leaderboard
// and tags championship-qualified teams. Each upsert also refreshes the
// team's rank index projection.
type RosterService struct {
	provider ResultsProvider
	teams    team.Repository
	cfg      RosterConfig
	logger   *logging.Logger
}

func NewRosterService(provider ResultsProvider, teams team.Repository, cfg RosterConfig, logger *logging.Logger) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{provider: provider, teams: teams, cfg: cfg, logger: logger}
}

// QualifiedTeamNumbers resolves the championship team set. An explicit SKU
// list is authoritative; without one the season's World-level events are
// discovered and their rosters unioned, which is best-effort only.
func (s *RosterService) QualifiedTeamNumbers(ctx context.Context) (map[string]bool, error) {
	ctx, span := startStageSpan(ctx, "qualification")
	defer span.End()

	qualified := make(map[string]bool)

	var championshipIDs []int64
	if len(s.cfg.WorldsSKUs) > 0 {
		for _, sku := range s.cfg.WorldsSKUs {
			evt, err := s.provider.FetchEventBySKU(ctx, sku)
			if err != nil {
				s.logger.WarnContext(ctx, "championship event lookup failed", "sku", sku, "error", err)
				continue
			}
			championshipIDs = append(championshipIDs, evt.ID)
		}
	} else {
		s.logger.WarnContext(ctx, "no championship skus configured, falling back to event-level discovery")
		events, err := s.provider.FetchSeasonEvents(ctx, s.cfg.SeasonID, "")
		if err != nil {
			return nil, fmt.Errorf("discover championship events season=%d: %w", s.cfg.SeasonID, err)
		}
		for _, evt := range events {
			if evt.Level == event.LevelWorld {
				championshipIDs = append(championshipIDs, evt.ID)
			}
		}
	}

	if len(championshipIDs) == 0 {
		s.logger.WarnContext(ctx, "no championship events found for season", "season_id", s.cfg.SeasonID)
		return qualified, nil
	}

	for _, eventID := range championshipIDs {
		numbers, err := s.provider.FetchEventTeamNumbers(ctx, eventID)
		if err != nil {
			s.logger.WarnContext(ctx, "championship roster fetch failed", "event_id", eventID, "error", err)
			continue
		}
		for _, number := range numbers {
			if number != "" {
				qualified[number] = true
			}
		}
	}

	s.logger.InfoContext(ctx, "resolved championship-qualified teams", "count", len(qualified))
	return qualified, nil
}

// SyncTeams refreshes the tracked roster from the per-grade skills
// leaderboards: the top-N of each grade plus any qualified team past the
// cutoff. Returns the tracked team numbers sorted for deterministic
// downstream processing.
func (s *RosterService) SyncTeams(ctx context.Context) ([]string, error) {
	ctx, span := startStageSpan(ctx, "roster")
	defer span.End()

	qualified, err := s.QualifiedTeamNumbers(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "qualification tagging unavailable, proceeding without flags", "error", err)
		qualified = make(map[string]bool)
	}

	tracked := make([]string, 0, s.cfg.TopTeamCount*len(s.cfg.GradeLevels))
	seen := make(map[string]bool)

	for _, grade := range s.cfg.GradeLevels {
		entries, err := s.provider.FetchSkillsStandings(ctx, s.cfg.SkillsSeasonID, grade)
		if err != nil {
			return tracked, fmt.Errorf("fetch skills standings grade=%s: %w", grade, err)
		}

		kept := 0
		for i, entry := range entries {
			if entry.TeamNumber == "" || entry.Rank <= 0 {
				s.logger.WarnContext(ctx, "skipping malformed skills entry", "grade", grade, "index", i)
				continue
			}
			// Qualified teams survive the rank cutoff.
			if i >= s.cfg.TopTeamCount && !qualified[entry.TeamNumber] {
				continue
			}

			item := team.Team{
				Number:       entry.TeamNumber,
				Name:         entry.TeamName,
				Organization: entry.Organization,
				City:         entry.City,
				Region:       entry.Region,
				Country:      entry.Country,
				Grade:        entry.Grade,
				Skills: team.Skills{
					Rank:          entry.Rank,
					CombinedScore: entry.Score,
					Driver:        entry.Driver,
					Programming:   entry.Programming,
				},
				WorldsQualified: qualified[entry.TeamNumber],
			}
			if item.Grade == "" {
				item.Grade = grade
			}
			if err := item.Validate(); err != nil {
				s.logger.WarnContext(ctx, "skipping invalid team", "number", entry.TeamNumber, "error", err)
				continue
			}

			if err := s.teams.UpsertMetadata(ctx, s.cfg.SeasonID, item); err != nil {
				return tracked, fmt.Errorf("upsert team metadata number=%s: %w", item.Number, err)
			}
			if !seen[item.Number] {
				seen[item.Number] = true
				tracked = append(tracked, item.Number)
			}
			kept++
		}
		s.logger.InfoContext(ctx, "synced grade roster", "grade", grade, "kept", kept, "fetched", len(entries))
	}

	sort.Strings(tracked)
	return tracked, nil
}
