package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog/log"
)

// NewDynamoClient creates a DynamoDB client from the default AWS config.
// A non-empty endpoint points the client at a local DynamoDB instance
// (dockerized local runs, integration tests) instead of AWS.
func NewDynamoClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	if endpoint == "" {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return dynamodb.NewFromConfig(cfg), nil
	}

	log.Debug().Str("endpoint", endpoint).Msg("Using local DynamoDB endpoint")
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion("local"))
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}
