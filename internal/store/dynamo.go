package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/driftline/ndbc/internal/models"
)

const defaultDatasetsTable = "buoy-datasets"

// DynamoDBClient is the subset of the DynamoDB API the store needs.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore persists datasets as single items keyed (stationId, category).
type DynamoStore struct {
	client DynamoDBClient
	table  string
	clock  clockwork.Clock
}

func NewDynamoStore(client DynamoDBClient, table string) *DynamoStore {
	if table == "" {
		table = defaultDatasetsTable
	}
	return &DynamoStore{
		client: client,
		table:  table,
		clock:  clockwork.NewRealClock(),
	}
}

func (s *DynamoStore) Load(ctx context.Context, stationID, category string) (*models.Dataset, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"stationId": &types.AttributeValueMemberS{Value: stationID},
			"category":  &types.AttributeValueMemberS{Value: category},
		},
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, &StoreError{Op: "load", StationID: stationID, Category: category, Err: err}
	}

	if result.Item == nil {
		return nil, nil
	}

	var rec datasetRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, &StoreError{Op: "load", StationID: stationID, Category: category, Err: err}
	}

	return rec.decode(), nil
}

func (s *DynamoStore) Save(ctx context.Context, stationID, category string, ds *models.Dataset) error {
	rec := encodeDataset(ds, s.clock.Now().Unix())
	rec.StationID = stationID
	rec.Category = category

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return &StoreError{Op: "save", StationID: stationID, Category: category, Err: err}
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		return &StoreError{Op: "save", StationID: stationID, Category: category, Err: err}
	}

	log.Debug().
		Str("station_id", stationID).
		Str("category", category).
		Int("rows", ds.Len()).
		Msg("Saved dataset to DynamoDB")

	return nil
}
