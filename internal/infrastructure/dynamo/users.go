package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-registration/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
// Email uniqueness is enforced with a guard item keyed "email#<address>".
type UserRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, now: time.Now}
}

// Create writes the user and its email guard in one transaction. Either
// condition failing surfaces as domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	guard := map[string]types.AttributeValue{
		attrUserID:   &types.AttributeValueMemberS{Value: emailGuardPrefix + u.Email},
		attrGuardFor: &types.AttributeValueMemberS{Value: u.UserID},
	}
	notExists := aws.String("attribute_not_exists(" + attrUserID + ")")
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: guard, ConditionExpression: notExists}},
		},
	})
	if isTransactionConflict(err) {
		return fmt.Errorf("email %s already registered: %w", u.Email, domain.ErrConflict)
	}
	return err
}

func (r *UserRepo) GetByFullName(ctx context.Context, fullName string) (*domain.User, error) {
	return r.queryGSI(ctx, indexFullName, attrFullName, fullName)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, indexEmail, attrEmail, email)
}

// Update applies a partial SET to an existing user and stamps updated_at.
// Updating a missing user returns domain.ErrNotFound instead of creating it.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields[attrUpdatedAt] = r.now().UTC()
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = attrUserID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return err
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user with %s %q: %w", attr, value, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
