package dynamo

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"full_name": "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "full_name"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"updated_at":      "2026-05-04T10:00:00Z",
		"email_confirmed": true,
		"full_name":       "Jane Doe",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, "email_confirmed", ue1.Names["#f0"])
	assert.Equal(t, "full_name", ue1.Names["#f1"])
	assert.Equal(t, "updated_at", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"email_confirmed": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestIsConditionFailed(t *testing.T) {
	assert.True(t, isConditionFailed(fmt.Errorf("put: %w", &types.ConditionalCheckFailedException{})))
	assert.False(t, isConditionFailed(fmt.Errorf("boom")))
}

func TestIsTransactionConflict(t *testing.T) {
	conflict := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
	throttled := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
	}
	assert.True(t, isTransactionConflict(conflict))
	assert.False(t, isTransactionConflict(throttled))
	assert.False(t, isTransactionConflict(fmt.Errorf("boom")))
}
