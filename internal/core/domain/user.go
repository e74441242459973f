package domain

// User represents a user known to the tenant's local user table.
type User struct {
	UserID string `json:"userID"` // Primary Key (e.g., UUID)
	Email  string `json:"email"`
	Name   string `json:"name"`
	AuditFields
}

// Actor is the already-authenticated identity handed over by the identity layer.
// UserID may not exist in the tenant's user table, in which case Email is used.
type Actor struct {
	UserID string
	Email  string
}
