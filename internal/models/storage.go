package models

import "time"

// InternalUser represents a user account stored in the internal database.
// Auth and identity only — preferences are stored as UserKeyValue entries.
type InternalUser struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserKeyValue represents a per-user configuration key-value pair.
type UserKeyValue struct {
	UserID   string    `json:"user_id"`
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	DateTime time.Time `json:"datetime"`
}

// UserRecord is a generic document record for all user domain data
// (transactions, banks, budgets, goals, holdings, notifications).
// Subject names the collection; Key is the record id; Value holds the
// JSON-encoded domain object.
type UserRecord struct {
	UserID   string    `json:"user_id"`
	Subject  string    `json:"subject"`
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	DateTime time.Time `json:"datetime"`
}

// Subjects stored as UserRecord rows.
const (
	SubjectTransaction  = "transaction"
	SubjectBank         = "bank"
	SubjectBudget       = "budget"
	SubjectGoal         = "goal"
	SubjectHolding      = "holding"
	SubjectNotification = "notification"
	SubjectSnapshot     = "snapshot"
)
