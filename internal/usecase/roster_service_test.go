package usecase

import (
	"context"
	"testing"

	"github.com/intelicampusai/vex5hub-site/internal/infrastructure/repository/memory"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

func standings(entries ...ExternalSkillsEntry) map[string][]ExternalSkillsEntry {
	return map[string][]ExternalSkillsEntry{"High School": entries}
}

func TestSyncTeamsKeepsTopNAndQualified(t *testing.T) {
	provider := &fakeProvider{
		eventBySKU: map[string]ExternalEvent{
			"RE-V5RC-25-WORLDS": {ID: 99, SKU: "RE-V5RC-25-WORLDS", Name: "Worlds", Level: "World"},
		},
		teamNumbers: map[int64][]string{99: {"333C"}},
		skills: standings(
			ExternalSkillsEntry{TeamNumber: "111A", Rank: 1, Score: 120},
			ExternalSkillsEntry{TeamNumber: "222B", Rank: 2, Score: 110},
			ExternalSkillsEntry{TeamNumber: "333C", Rank: 3, Score: 100},
		),
	}
	teams := memory.NewTeamRepository()
	svc := NewRosterService(provider, teams, RosterConfig{
		SeasonID:       190,
		SkillsSeasonID: 197,
		TopTeamCount:   2,
		GradeLevels:    []string{"High School"},
		WorldsSKUs:     []string{"RE-V5RC-25-WORLDS"},
	}, logging.NewNop())

	tracked, err := svc.SyncTeams(context.Background())
	if err != nil {
		t.Fatalf("SyncTeams: %v", err)
	}

	// 333C sits past the top-2 cutoff but is championship-qualified.
	if len(tracked) != 3 {
		t.Fatalf("tracked = %v, want all three teams", tracked)
	}
	stored := teams.Teams()
	if !stored["333C"].WorldsQualified {
		t.Error("333C should carry the qualification flag")
	}
	if stored["111A"].WorldsQualified {
		t.Error("111A should not carry the qualification flag")
	}
	if stored["111A"].Skills.Rank != 1 || stored["111A"].Skills.CombinedScore != 120 {
		t.Errorf("111A skills = %+v", stored["111A"].Skills)
	}
}

func TestSyncTeamsDropsBelowCutoffUnqualified(t *testing.T) {
	provider := &fakeProvider{
		skills: standings(
			ExternalSkillsEntry{TeamNumber: "111A", Rank: 1, Score: 120},
			ExternalSkillsEntry{TeamNumber: "222B", Rank: 2, Score: 110},
			ExternalSkillsEntry{TeamNumber: "444D", Rank: 3, Score: 90},
		),
	}
	svc := NewRosterService(provider, memory.NewTeamRepository(), RosterConfig{
		SeasonID:       190,
		SkillsSeasonID: 197,
		TopTeamCount:   2,
		GradeLevels:    []string{"High School"},
	}, logging.NewNop())

	tracked, err := svc.SyncTeams(context.Background())
	if err != nil {
		t.Fatalf("SyncTeams: %v", err)
	}
	for _, number := range tracked {
		if number == "444D" {
			t.Fatal("444D is below the cutoff and unqualified, should be dropped")
		}
	}
	if len(tracked) != 2 {
		t.Fatalf("tracked = %v, want top 2", tracked)
	}
}

func TestSyncTeamsSkipsMalformedEntries(t *testing.T) {
	provider := &fakeProvider{
		skills: standings(
			ExternalSkillsEntry{TeamNumber: "", Rank: 1, Score: 130},
			ExternalSkillsEntry{TeamNumber: "111A", Rank: 0, Score: 120},
			ExternalSkillsEntry{TeamNumber: "222B", Rank: 3, Score: 110},
		),
	}
	svc := NewRosterService(provider, memory.NewTeamRepository(), RosterConfig{
		SeasonID:       190,
		SkillsSeasonID: 197,
		TopTeamCount:   10,
		GradeLevels:    []string{"High School"},
	}, logging.NewNop())

	tracked, err := svc.SyncTeams(context.Background())
	if err != nil {
		t.Fatalf("SyncTeams: %v", err)
	}
	if len(tracked) != 1 || tracked[0] != "222B" {
		t.Fatalf("tracked = %v, want only the well-formed entry", tracked)
	}
}

func TestQualifiedTeamNumbersDiscoversWorldEvents(t *testing.T) {
	provider := &fakeProvider{
		events: []ExternalEvent{
			{ID: 1, SKU: "RE-A", Name: "Regional", Level: "Regional"},
			{ID: 2, SKU: "RE-B", Name: "Worlds", Level: "World"},
		},
		teamNumbers: map[int64][]string{2: {"111A", "222B"}},
	}
	svc := NewRosterService(provider, memory.NewTeamRepository(), RosterConfig{
		SeasonID:       190,
		SkillsSeasonID: 197,
		TopTeamCount:   10,
		GradeLevels:    []string{"High School"},
	}, logging.NewNop())

	qualified, err := svc.QualifiedTeamNumbers(context.Background())
	if err != nil {
		t.Fatalf("QualifiedTeamNumbers: %v", err)
	}
	if len(qualified) != 2 || !qualified["111A"] || !qualified["222B"] {
		t.Fatalf("qualified = %v", qualified)
	}
}

func TestQualifiedTeamNumbersToleratesBadSKU(t *testing.T) {
	provider := &fakeProvider{
		eventBySKU: map[string]ExternalEvent{
			"RE-GOOD": {ID: 5, SKU: "RE-GOOD", Name: "Worlds", Level: "World"},
		},
		teamNumbers: map[int64][]string{5: {"111A"}},
	}
	svc := NewRosterService(provider, memory.NewTeamRepository(), RosterConfig{
		SeasonID:       190,
		SkillsSeasonID: 197,
		TopTeamCount:   10,
		GradeLevels:    []string{"High School"},
		WorldsSKUs:     []string{"RE-MISSING", "RE-GOOD"},
	}, logging.NewNop())

	qualified, err := svc.QualifiedTeamNumbers(context.Background())
	if err != nil {
		t.Fatalf("QualifiedTeamNumbers: %v", err)
	}
	if len(qualified) != 1 || !qualified["111A"] {
		t.Fatalf("qualified = %v, want roster from the resolvable SKU", qualified)
	}
}
