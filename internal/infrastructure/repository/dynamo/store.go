// Package dynamo persists the denormalized competition records in a single
// DynamoDB table. Partition keys segregate event-owned, team-owned and
// season-owned data; composite sort keys keep match items in bracket order.
package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	schemaVersion = 2
	metadataSK    = "METADATA"
)

// Store wraps the DynamoDB client with the table the repositories share.
type Store struct {
	client    *dynamodb.Client
	tableName string
	now       func() time.Time
}

func NewStore(client *dynamodb.Client, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Store) putItem(ctx context.Context, item any) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      marshaled,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (s *Store) deleteItem(ctx context.Context, pk, sk string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return fmt.Errorf("delete item pk=%s sk=%s: %w", pk, sk, err)
	}
	return nil
}
