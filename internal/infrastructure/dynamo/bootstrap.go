package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-registration/internal/config"
	"go.uber.org/zap"
)

// SchemaAPI is the table management subset of *dynamodb.Client used by Bootstrap.
type SchemaAPI interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, in *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// Bootstrap creates the users and tokens tables if they don't already exist.
// Safe to call on every startup.
func Bootstrap(ctx context.Context, client SchemaAPI, tables config.DynamoTables, log *zap.Logger) {
	createTable(ctx, client, log, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Users),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrUserID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrFullName), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrEmail), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrUserID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexFullName, attrFullName),
			gsi(indexEmail, attrEmail),
		},
	})

	createTable(ctx, client, log, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Tokens),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrValue), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrValue), KeyType: types.KeyTypeHash},
		},
	})
	enableTTL(ctx, client, log, tables.Tokens, attrPurgeAt)
}

func gsi(indexName, hashKey string) types.GlobalSecondaryIndex {
	return types.GlobalSecondaryIndex{
		IndexName: aws.String(indexName),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
		},
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client SchemaAPI, log *zap.Logger, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err == nil {
		log.Info("created table", zap.String("table", *input.TableName))
		return
	}
	// ResourceInUseException means the table already exists.
	var riue *types.ResourceInUseException
	if !errors.As(err, &riue) {
		log.Warn("could not create table", zap.String("table", *input.TableName), zap.Error(err))
	}
}

func enableTTL(ctx context.Context, client SchemaAPI, log *zap.Logger, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		log.Warn("could not enable TTL", zap.String("table", tableName), zap.Error(err))
	}
}
