package dynamo

// Attribute names shared by key builders, conditions and update expressions.
const (
	attrUserID    = "user_id"
	attrFullName  = "full_name"
	attrEmail     = "email"
	attrValue     = "value"
	attrGuardFor  = "guard_for"
	attrPurgeAt   = "purge_at"
	attrUpdatedAt = "updated_at"

	indexFullName = "full_name-index"
	indexEmail    = "email-index"
)

// emailGuardPrefix marks the sentinel items that reserve an email address in
// the users table. They carry neither full_name nor email, so no GSI sees them.
const emailGuardPrefix = "email#"
