package dynamo

import (
	"context"
	"fmt"

	"github.com/intelicampusai/vex5hub-site/internal/domain/match"
	"github.com/intelicampusai/vex5hub-site/internal/domain/team"
)

// TeamRepository stores team metadata. Every upsert also refreshes the
// season rank index projection so the ranking query reads one partition in
// GSI1 sorted by skills rank.
type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

type teamMetadataItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	GSI1PK          string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK          string `dynamodbav:"GSI1SK,omitempty"`
	TeamNumber      string `dynamodbav:"team_number"`
	ExternalID      int64  `dynamodbav:"external_id,omitempty"`
	TeamName        string `dynamodbav:"team_name,omitempty"`
	Organization    string `dynamodbav:"organization,omitempty"`
	City            string `dynamodbav:"city,omitempty"`
	Region          string `dynamodbav:"region,omitempty"`
	Country         string `dynamodbav:"country,omitempty"`
	Location        string `dynamodbav:"location,omitempty"`
	Grade           string `dynamodbav:"grade,omitempty"`
	SkillsRank      int    `dynamodbav:"skills_rank"`
	SkillsScore     int    `dynamodbav:"skills_score"`
	DriverScore     int    `dynamodbav:"driver_score"`
	ProgramScore    int    `dynamodbav:"programming_score"`
	WorldsQualified bool   `dynamodbav:"worlds_qualified"`
	SchemaVersion   int    `dynamodbav:"schema_version"`
	UpdatedAt       string `dynamodbav:"updated_at"`
}

func (r *TeamRepository) UpsertMetadata(ctx context.Context, seasonID int, item team.Team) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validate team %s: %w", item.Number, err)
	}

	record := teamMetadataItem{
		PK:              match.TeamPartitionKey(item.Number),
		SK:              metadataSK,
		TeamNumber:      item.Number,
		ExternalID:      item.ExternalID,
		TeamName:        item.Name,
		Organization:    item.Organization,
		City:            item.City,
		Region:          item.Region,
		Country:         item.Country,
		Location:        item.LocationString(),
		Grade:           item.Grade,
		SkillsRank:      item.Skills.Rank,
		SkillsScore:     item.Skills.CombinedScore,
		DriverScore:     item.Skills.Driver,
		ProgramScore:    item.Skills.Programming,
		WorldsQualified: item.WorldsQualified,
		SchemaVersion:   schemaVersion,
		UpdatedAt:       r.store.timestamp(),
	}
	// Teams without a skills standing stay out of the rank index.
	if item.Skills.Rank > 0 {
		record.GSI1PK = fmt.Sprintf("SEASON#%d", seasonID)
		record.GSI1SK = fmt.Sprintf("RANK#%04d#TEAM#%s", item.Skills.Rank, item.Number)
	}

	if err := r.store.putItem(ctx, record); err != nil {
		return fmt.Errorf("put team metadata team=%s: %w", item.Number, err)
	}
	return nil
}
