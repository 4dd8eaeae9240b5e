package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/intelicampusai/vex5hub-site/internal/domain/match"
)

// MatchRepository stores event-owned and team-owned match projections and
// exposes the scan/delete surface the reconciliation sweeper uses.
type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

type eventMatchItem struct {
	PK            string   `dynamodbav:"PK"`
	SK            string   `dynamodbav:"SK"`
	EventName     string   `dynamodbav:"event_name"`
	DivisionID    int      `dynamodbav:"division_id"`
	Round         int      `dynamodbav:"round"`
	RoundName     string   `dynamodbav:"round_name"`
	Instance      int      `dynamodbav:"instance"`
	MatchNumber   int      `dynamodbav:"match_number"`
	MatchLabel    string   `dynamodbav:"match_label,omitempty"`
	Field         string   `dynamodbav:"field,omitempty"`
	Scheduled     string   `dynamodbav:"scheduled,omitempty"`
	Started       string   `dynamodbav:"started,omitempty"`
	RedTeams      []string `dynamodbav:"red_teams"`
	BlueTeams     []string `dynamodbav:"blue_teams"`
	RedScore      *int     `dynamodbav:"red_score,omitempty"`
	BlueScore     *int     `dynamodbav:"blue_score,omitempty"`
	SchemaVersion int      `dynamodbav:"schema_version"`
	UpdatedAt     string   `dynamodbav:"updated_at"`
}

type teamMatchItem struct {
	PK            string   `dynamodbav:"PK"`
	SK            string   `dynamodbav:"SK"`
	TeamNumber    string   `dynamodbav:"team_number"`
	EventSKU      string   `dynamodbav:"event_sku"`
	EventName     string   `dynamodbav:"event_name"`
	DivisionID    int      `dynamodbav:"division_id"`
	Round         int      `dynamodbav:"round"`
	RoundName     string   `dynamodbav:"round_name"`
	Instance      int      `dynamodbav:"instance"`
	MatchNumber   int      `dynamodbav:"match_number"`
	MatchLabel    string   `dynamodbav:"match_label,omitempty"`
	Alliance      string   `dynamodbav:"alliance"`
	MyScore       *int     `dynamodbav:"my_score,omitempty"`
	OppScore      *int     `dynamodbav:"opp_score,omitempty"`
	Won           bool     `dynamodbav:"won"`
	PartnerTeams  []string `dynamodbav:"partner_teams"`
	OpponentTeams []string `dynamodbav:"opponent_teams"`
	EventStart    string   `dynamodbav:"event_start,omitempty"`
	EventEnd      string   `dynamodbav:"event_end,omitempty"`
	EventLocation string   `dynamodbav:"event_location,omitempty"`
	SchemaVersion int      `dynamodbav:"schema_version"`
	UpdatedAt     string   `dynamodbav:"updated_at"`
}

func (r *MatchRepository) PutEventRecord(ctx context.Context, record match.EventRecord) error {
	sortKey, err := match.EventSortKey(record.DivisionID, record.Round, record.Instance, record.Number)
	if err != nil {
		return fmt.Errorf("build event match key: %w", err)
	}
	label, err := match.FormatLabel(record.Round, record.Instance, record.Number)
	if err != nil {
		return fmt.Errorf("format match label: %w", err)
	}

	item := eventMatchItem{
		PK:            match.EventPartitionKey(record.EventSKU),
		SK:            sortKey,
		EventName:     record.EventName,
		DivisionID:    record.DivisionID,
		Round:         int(record.Round),
		RoundName:     record.Round.String(),
		Instance:      record.Instance,
		MatchNumber:   record.Number,
		MatchLabel:    label,
		Field:         record.Field,
		Scheduled:     record.Scheduled,
		Started:       record.Started,
		RedTeams:      stringList(record.Red.Teams),
		BlueTeams:     stringList(record.Blue.Teams),
		RedScore:      record.Red.Score,
		BlueScore:     record.Blue.Score,
		SchemaVersion: schemaVersion,
		UpdatedAt:     r.store.timestamp(),
	}
	if err := r.store.putItem(ctx, item); err != nil {
		return fmt.Errorf("put event match record sku=%s: %w", record.EventSKU, err)
	}
	return nil
}

func (r *MatchRepository) PutTeamRecord(ctx context.Context, record match.TeamRecord) error {
	sortKey, err := match.TeamSortKey(record.EventSKU, record.DivisionID, record.Round, record.Instance, record.Number)
	if err != nil {
		return fmt.Errorf("build team match key: %w", err)
	}
	label, err := match.FormatLabel(record.Round, record.Instance, record.Number)
	if err != nil {
		return fmt.Errorf("format match label: %w", err)
	}

	item := teamMatchItem{
		PK:            match.TeamPartitionKey(record.TeamNumber),
		SK:            sortKey,
		TeamNumber:    record.TeamNumber,
		EventSKU:      record.EventSKU,
		EventName:     record.EventName,
		DivisionID:    record.DivisionID,
		Round:         int(record.Round),
		RoundName:     record.Round.String(),
		Instance:      record.Instance,
		MatchNumber:   record.Number,
		MatchLabel:    label,
		Alliance:      record.Alliance,
		MyScore:       record.MyScore,
		OppScore:      record.OppScore,
		Won:           record.Won,
		PartnerTeams:  stringList(record.PartnerTeams),
		OpponentTeams: stringList(record.OpponentTeams),
		EventStart:    record.EventStart,
		EventEnd:      record.EventEnd,
		EventLocation: record.EventLocation,
		SchemaVersion: schemaVersion,
		UpdatedAt:     r.store.timestamp(),
	}
	if err := r.store.putItem(ctx, item); err != nil {
		return fmt.Errorf("put team match record team=%s: %w", record.TeamNumber, err)
	}
	return nil
}

// attributevalue marshals a nil slice as a NULL attribute; an alliance with
// no known teams should read as an empty list instead.
func stringList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type matchKeyItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// ScanMatchKeys pages through the whole table and returns the keys of every
// match item, current and legacy shapes alike.
func (r *MatchRepository) ScanMatchKeys(ctx context.Context) ([]match.StoredKey, error) {
	out := make([]match.StoredKey, 0, 256)
	var startKey map[string]types.AttributeValue

	filterValues := map[string]types.AttributeValue{
		":prefix": &types.AttributeValueMemberS{Value: match.MatchSortPrefix},
	}

	for {
		resp, err := r.store.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.store.tableName),
			ProjectionExpression:      aws.String("PK, SK"),
			FilterExpression:          aws.String("begins_with(SK, :prefix)"),
			ExpressionAttributeValues: filterValues,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan match keys: %w", err)
		}

		for _, raw := range resp.Items {
			var item matchKeyItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshal match key: %w", err)
			}
			out = append(out, match.StoredKey{Partition: item.PK, Sort: item.SK})
		}

		if len(resp.LastEvaluatedKey) == 0 {
			return out, nil
		}
		startKey = resp.LastEvaluatedKey
	}
}

func (r *MatchRepository) DeleteByKey(ctx context.Context, key match.StoredKey) error {
	return r.store.deleteItem(ctx, key.Partition, key.Sort)
}
