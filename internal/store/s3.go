package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/driftline/ndbc/internal/models"
)

// S3Client is the subset of the S3 API the store needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store persists each dataset as one JSON artifact under
// <stationID>/<category>.json.
type S3Store struct {
	client     S3Client
	bucketName string
	clock      clockwork.Clock
}

func NewS3Store(client S3Client, bucketName string) *S3Store {
	return &S3Store{
		client:     client,
		bucketName: bucketName,
		clock:      clockwork.NewRealClock(),
	}
}

// NewS3Client creates an S3 client from the default AWS config.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func datasetKey(stationID, category string) string {
	return fmt.Sprintf("%s/%s.json", stationID, category)
}

func (s *S3Store) Load(ctx context.Context, stationID, category string) (*models.Dataset, error) {
	if s.bucketName == "" {
		return nil, &StoreError{Op: "load", StationID: stationID, Category: category,
			Err: errors.New("empty bucket name")}
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(datasetKey(stationID, category)),
	})
	if err != nil {
		var notFound *s3types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, &StoreError{Op: "load", StationID: stationID, Category: category, Err: err}
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Error closing S3 object body")
		}
	}(result.Body)

	var rec datasetRecord
	if err := json.NewDecoder(result.Body).Decode(&rec); err != nil {
		return nil, &StoreError{Op: "load", StationID: stationID, Category: category, Err: err}
	}

	return rec.decode(), nil
}

func (s *S3Store) Save(ctx context.Context, stationID, category string, ds *models.Dataset) error {
	if s.bucketName == "" {
		return &StoreError{Op: "save", StationID: stationID, Category: category,
			Err: errors.New("empty bucket name")}
	}

	rec := encodeDataset(ds, s.clock.Now().Unix())
	rec.StationID = stationID
	rec.Category = category

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(rec); err != nil {
		return &StoreError{Op: "save", StationID: stationID, Category: category, Err: err}
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(datasetKey(stationID, category)),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return &StoreError{Op: "save", StationID: stationID, Category: category, Err: err}
	}

	log.Debug().
		Str("station_id", stationID).
		Str("category", category).
		Int("rows", ds.Len()).
		Msg("Saved dataset to S3")
	return nil
}
