package models

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	}
	return false
}

// Transaction represents a single income or expense record as returned by the API.
type Transaction struct {
	ID              int             `json:"id"`
	UserID          int             `json:"user_id"`
	Amount          float64         `json:"amount"`
	Type            TransactionType `json:"type"`
	TransactionDate Timestamp       `json:"transaction_date"`
	Description     *string         `json:"description,omitempty"`
	CategoryID      *int            `json:"category_id,omitempty"`
	Category        *Category       `json:"category,omitempty"`
	CreatedAt       Timestamp       `json:"created_at"`
	UpdatedAt       Timestamp       `json:"updated_at"`
}

// TransactionCreate is the payload for creating a transaction.
// Absent optional fields are omitted from the request body.
type TransactionCreate struct {
	Amount          float64         `json:"amount"`
	Type            TransactionType `json:"type"`
	TransactionDate *Timestamp      `json:"transaction_date,omitempty"`
	Description     *string         `json:"description,omitempty"`
	CategoryID      *int            `json:"category_id,omitempty"`
}

// TransactionUpdate is the payload for updating a transaction. Only non-nil
// fields are sent.
type TransactionUpdate struct {
	Amount          *float64         `json:"amount,omitempty"`
	Type            *TransactionType `json:"type,omitempty"`
	TransactionDate *Timestamp       `json:"transaction_date,omitempty"`
	Description     *string          `json:"description,omitempty"`
	CategoryID      *int             `json:"category_id,omitempty"`
}

// TransactionFilter holds optional query parameters for listing transactions.
// Skip and Limit are paging hints and are never set from the page filters.
type TransactionFilter struct {
	Skip            *int
	Limit           *int
	StartDate       *string
	EndDate         *string
	TransactionType *TransactionType
	CategoryID      *int
}
