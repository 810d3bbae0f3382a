package models

// IntentType is the top-level classification of a user message.
type IntentType string

const (
	IntentAction        IntentType = "action"
	IntentQuery         IntentType = "query"
	IntentClarification IntentType = "clarification"
)

// Assistant action names. Each maps to the same mutation the manual API uses.
const (
	ActionAddTransaction = "add_transaction"
	ActionAddBudget      = "add_budget"
	ActionAddGoal        = "add_goal"
	ActionAddBank        = "add_bank"
)

// Intent is the parsed classification of a single user message.
// Fields beyond Type/Action are action-specific and may be empty; the
// keyword categorizer fills Category and TransactionType when absent.
type Intent struct {
	Type            IntentType `json:"type"`
	Action          string     `json:"action,omitempty"`
	Amount          float64    `json:"amount,omitempty"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	TransactionType string     `json:"transactionType,omitempty"`
	Name            string     `json:"name,omitempty"`
	TargetAmount    float64    `json:"targetAmount,omitempty"`
	Limit           float64    `json:"limit,omitempty"`
	Question        string     `json:"question,omitempty"`
}

// ReplyKind classifies an assistant reply for the UI.
type ReplyKind string

const (
	ReplyConfirmation ReplyKind = "confirmation"
	ReplyAnswer       ReplyKind = "answer"
	ReplyClarify      ReplyKind = "clarification"
	ReplyValidation   ReplyKind = "validation_error"
	ReplySystemError  ReplyKind = "system_error"
	ReplyConfigError  ReplyKind = "config_error"
)

// Reply is the assistant's response to a single user message.
type Reply struct {
	Kind    ReplyKind `json:"kind"`
	Message string    `json:"message"`
}

// IsError reports whether the reply represents a failure.
func (r Reply) IsError() bool {
	return r.Kind == ReplyValidation || r.Kind == ReplySystemError || r.Kind == ReplyConfigError
}
