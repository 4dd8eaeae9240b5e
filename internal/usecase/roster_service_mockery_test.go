package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/intelicampusai/vex5hub-site/internal/domain/team"
	teammock "github.com/intelicampusai/vex5hub-site/internal/mocks/domain/team"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

func TestRosterService_SyncTeams_UpsertFailureStopsRunUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &fakeProvider{
		skills: standings(
			ExternalSkillsEntry{TeamNumber: "111A", Rank: 1, Score: 120},
			ExternalSkillsEntry{TeamNumber: "222B", Rank: 2, Score: 110},
		),
	}
	teams := teammock.NewRepository(t)
	svc := NewRosterService(provider, teams, RosterConfig{
		SeasonID:       190,
		SkillsSeasonID: 197,
		TopTeamCount:   10,
		GradeLevels:    []string{"High School"},
	}, logging.NewNop())

	storeErr := fmt.Errorf("%w: table throttled", ErrDependencyUnavailable)
	teams.
		On("UpsertMetadata", mock.Anything, 190, mock.MatchedBy(func(item team.Team) bool {
			return item.Number == "111A"
		})).
		Return(storeErr).
		Once()

	_, err := svc.SyncTeams(ctx)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	teams.AssertNumberOfCalls(t, "UpsertMetadata", 1)
}
