package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-api-registration/internal/domain"
)

// TokenRepo stores confirmation tokens keyed by their secret value.
// Items are never updated: a token is created once and consumed by deletion.
type TokenRepo struct {
	client    API
	tableName string
}

func NewTokenRepo(client API, tableName string) *TokenRepo {
	return &TokenRepo{client: client, tableName: tableName}
}

// "value" is a DynamoDB reserved word, so it is always referenced as #v.
var tokenValueName = map[string]string{"#v": attrValue}

// Create stores t unless another token already holds the same value, in
// which case domain.ErrConflict is returned.
func (r *TokenRepo) Create(ctx context.Context, t *domain.Token) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#v)"),
		ExpressionAttributeNames: tokenValueName,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("token value in use: %w", domain.ErrConflict)
	}
	return err
}

func (r *TokenRepo) GetByValue(ctx context.Context, value string) (*domain.Token, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrValue, value),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("token: %w", domain.ErrNotFound)
	}
	var t domain.Token
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Consume deletes the token with the given value. Only one caller can win:
// a concurrent or repeated consume gets domain.ErrNotFound.
func (r *TokenRepo) Consume(ctx context.Context, value string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(attrValue, value),
		ConditionExpression:      aws.String("attribute_exists(#v)"),
		ExpressionAttributeNames: tokenValueName,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("token already consumed: %w", domain.ErrNotFound)
	}
	return err
}
