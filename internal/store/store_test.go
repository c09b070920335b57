package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/ndbc/internal/models"
)

func sampleDataset() *models.Dataset {
	t0 := time.Date(2024, 1, 15, 10, 40, 0, 0, time.UTC)
	return &models.Dataset{
		StationID: "41001",
		Category:  "cwind",
		Columns:   []string{"WDIR", "WSPD", "GDR", "GST", "GTIME"},
		Rows: []models.Row{
			{
				Time: t0,
				Values: []models.Value{
					models.Float(230),
					models.Float(9.3),
					models.Missing(models.KindFloat),
					models.Float(11.1),
					models.Int(1032),
				},
			},
			{
				Time: t0.Add(10 * time.Minute),
				Values: []models.Value{
					models.Missing(models.KindFloat),
					models.Float(0),
					models.Float(238),
					models.Float(10.8),
					models.Missing(models.KindInt),
				},
			},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	want := sampleDataset()

	require.NoError(t, s.Save(ctx, "41001", "cwind", want))

	got, err := s.Load(ctx, "41001", "cwind")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Missing and measured-zero survive the codec as distinct values.
	assert.True(t, got.Rows[1].Values[0].IsMissing())
	wspd, ok := got.Rows[1].Values[1].AsFloat()
	require.True(t, ok)
	assert.Equal(t, 0.0, wspd)
}

func TestMemoryStoreLoadAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ds, err := s.Load(ctx, "41001", "cwind")
	require.NoError(t, err)
	assert.Nil(t, ds)

	require.NoError(t, s.Save(ctx, "41001", "cwind", sampleDataset()))

	ds, err = s.Load(ctx, "41001", "stdmet")
	require.NoError(t, err)
	assert.Nil(t, ds, "other categories of the same station stay absent")
}

func TestMemoryStoreSaveReplacesWhole(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, "41001", "cwind", sampleDataset()))

	smaller := &models.Dataset{
		StationID: "41001",
		Category:  "cwind",
		Columns:   []string{"WSPD"},
		Rows: []models.Row{
			{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Values: []models.Value{models.Float(5)}},
		},
	}
	require.NoError(t, s.Save(ctx, "41001", "cwind", smaller))

	got, err := s.Load(ctx, "41001", "cwind")
	require.NoError(t, err)
	assert.Equal(t, smaller, got)
}

// fakeDynamo keeps put items in memory keyed by the table's composite key.
type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func dynamoKey(key map[string]types.AttributeValue) string {
	station := key["stationId"].(*types.AttributeValueMemberS).Value
	category := key["category"].(*types.AttributeValueMemberS).Value
	return station + "|" + category
}

func (f *fakeDynamo) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	item, ok := f.items[dynamoKey(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items[dynamoKey(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

type failingDynamo struct {
	err error
}

func (f *failingDynamo) GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return nil, f.err
}

func (f *failingDynamo) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return nil, f.err
}

func TestDynamoStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeDynamo()
	s := NewDynamoStore(client, "test-datasets")
	want := sampleDataset()

	require.NoError(t, s.Save(ctx, "41001", "cwind", want))

	got, err := s.Load(ctx, "41001", "cwind")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDynamoStoreLoadAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewDynamoStore(newFakeDynamo(), "test-datasets")

	ds, err := s.Load(ctx, "41001", "cwind")
	require.NoError(t, err)
	assert.Nil(t, ds)
}

func TestDynamoStoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("throughput exceeded")
	s := NewDynamoStore(&failingDynamo{err: boom}, "test-datasets")

	_, err := s.Load(ctx, "41001", "cwind")
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "load", storeErr.Op)
	assert.Equal(t, "41001", storeErr.StationID)
	assert.ErrorIs(t, err, boom)

	err = s.Save(ctx, "41001", "cwind", sampleDataset())
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "save", storeErr.Op)
}

func TestDynamoStoreDefaultTable(t *testing.T) {
	s := NewDynamoStore(newFakeDynamo(), "")
	assert.Equal(t, defaultDatasetsTable, s.table)
}
