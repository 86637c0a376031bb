package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-registration/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testToken() *domain.Token {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	return &domain.Token{
		TokenID:   "6f1c2a0e-1c7b-4c47-9a57-0a4b1f0c9e11",
		Value:     "ab12",
		UserID:    "u1",
		Purpose:   domain.TokenPurposeEmailConfirmation,
		CreatedAt: at,
		PurgeAt:   at.Add(8 * 24 * time.Hour).Unix(),
	}
}

func TestTokenRepo_Create_IsConditionalOnValue(t *testing.T) {
	api := new(mockAPI)
	repo := NewTokenRepo(api, "tokens")

	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		_, hasPurge := in.Item[attrPurgeAt].(*types.AttributeValueMemberN)
		return aws.ToString(in.ConditionExpression) == "attribute_not_exists(#v)" &&
			in.ExpressionAttributeNames["#v"] == attrValue && hasPurge
	})).Return(&dynamodb.PutItemOutput{}, nil)

	require.NoError(t, repo.Create(context.Background(), testToken()))
	api.AssertExpectations(t)
}

func TestTokenRepo_Create_CollisionIsConflict(t *testing.T) {
	api := new(mockAPI)
	repo := NewTokenRepo(api, "tokens")
	api.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

	assert.ErrorIs(t, repo.Create(context.Background(), testToken()), domain.ErrConflict)
}

func TestTokenRepo_GetByValue(t *testing.T) {
	api := new(mockAPI)
	repo := NewTokenRepo(api, "tokens")
	item, err := attributevalue.MarshalMap(testToken())
	require.NoError(t, err)
	api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return aws.ToBool(in.ConsistentRead)
	})).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	tok, err := repo.GetByValue(context.Background(), "ab12")
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, "ab12", tok.Value)
	assert.True(t, tok.CreatedAt.Equal(testToken().CreatedAt))
}

func TestTokenRepo_GetByValue_NotFound(t *testing.T) {
	api := new(mockAPI)
	repo := NewTokenRepo(api, "tokens")
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := repo.GetByValue(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenRepo_Consume(t *testing.T) {
	api := new(mockAPI)
	repo := NewTokenRepo(api, "tokens")
	api.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return aws.ToString(in.ConditionExpression) == "attribute_exists(#v)"
	})).Return(&dynamodb.DeleteItemOutput{}, nil).Once()
	api.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

	require.NoError(t, repo.Consume(context.Background(), "ab12"))
	assert.ErrorIs(t, repo.Consume(context.Background(), "ab12"), domain.ErrNotFound)
}
