package domain

import "time"

// TokenPurposeEmailConfirmation marks tokens mailed out to confirm a new account's email.
const TokenPurposeEmailConfirmation = "email_confirmation"

// Token is a single-use, time-limited value delivered inside a confirmation link.
// Tokens are never mutated; consuming one deletes it.
type Token struct {
	TokenID   string    `json:"id" dynamodbav:"token_id"`
	Value     string    `json:"-" dynamodbav:"value"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Purpose   string    `json:"purpose" dynamodbav:"purpose"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	// PurgeAt is a Unix timestamp used as DynamoDB TTL. Expiry never looks at it.
	PurgeAt int64 `json:"-" dynamodbav:"purge_at,omitempty"`
}

// IsExpired reports whether the token is at or past the end of its validity window.
func (t *Token) IsExpired(window time.Duration) bool {
	return t.IsExpiredAt(time.Now(), window)
}

// IsExpiredAt is IsExpired against an explicit clock reading. The boundary is
// inclusive: a token checked exactly at CreatedAt+window is expired.
func (t *Token) IsExpiredAt(now time.Time, window time.Duration) bool {
	return !now.Before(t.CreatedAt.Add(window))
}
