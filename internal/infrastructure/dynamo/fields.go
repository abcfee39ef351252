package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUsed         = "used"
	fieldPasswordHash = "password_hash"
	fieldStatus       = "status"
	fieldDeletedAt    = "deleted_at"
	fieldLogoURL      = "logo_url"
	fieldUpdatedAt    = "updated_at"
)
