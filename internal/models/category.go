package models

// Category represents a transaction category. Categories are read-only from
// this client; they only appear embedded in transactions.
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	UserID      int       `json:"user_id"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}
