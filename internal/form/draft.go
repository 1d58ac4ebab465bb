package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arampall/finance-tracker/internal/models"
)

// Field names accepted by SetField.
const (
	FieldAmount          = "amount"
	FieldType            = "type"
	FieldTransactionDate = "transaction_date"
	FieldDescription     = "description"
	FieldCategoryID      = "category_id"
)

// Draft is the in-progress, string-valued form data. Its validation tags
// mirror the input constraints of the form: amount min 0.01 step 0.01, date
// required, category a positive whole number.
type Draft struct {
	Amount          string `form:"amount" validate:"required,amount"`
	Type            string `form:"type" validate:"required,transaction_type"`
	TransactionDate string `form:"transaction_date" validate:"required,date_only"`
	Description     string `form:"description" validate:"max=500"`
	CategoryID      string `form:"category_id" validate:"omitempty,record_id"`
}

// NewDraft builds a draft from an existing transaction, or the defaults for a
// new one when existing is nil. An existing date keeps the calendar day the
// server sent.
func NewDraft(existing *models.Transaction, now time.Time) Draft {
	today := now.UTC().Format(models.DateLayout)
	if existing == nil {
		return Draft{
			Type:            string(models.TransactionTypeExpense),
			TransactionDate: today,
		}
	}

	d := Draft{
		Amount:          decimal.NewFromFloat(existing.Amount).String(),
		Type:            string(existing.Type),
		TransactionDate: today,
	}
	if !existing.TransactionDate.IsZero() {
		d.TransactionDate = existing.TransactionDate.Date()
	}
	if existing.Description != nil {
		d.Description = *existing.Description
	}
	if existing.CategoryID != nil {
		d.CategoryID = strconv.Itoa(*existing.CategoryID)
	}
	return d
}

// set updates a single named field.
func (d *Draft) set(name, value string) error {
	switch name {
	case FieldAmount:
		d.Amount = value
	case FieldType:
		d.Type = value
	case FieldTransactionDate:
		d.TransactionDate = value
	case FieldDescription:
		d.Description = value
	case FieldCategoryID:
		d.CategoryID = value
	default:
		return fmt.Errorf("unknown field %q", name)
	}
	return nil
}

// Payload is the typed form of a draft, ready to be sent as a create or an
// update. Nil fields are omitted from the request. Target is the transaction
// being edited, nil for a new one.
type Payload struct {
	Target          *models.Transaction
	Amount          float64
	Type            models.TransactionType
	TransactionDate *models.Timestamp
	Description     *string
	CategoryID      *int
}

// Payload converts the draft. Empty description and category are omitted and
// the date is re-encoded as midnight UTC.
func (d Draft) Payload() (Payload, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(d.Amount))
	if err != nil {
		return Payload{}, fmt.Errorf("parsing amount %q: %w", d.Amount, err)
	}
	p := Payload{
		Amount: amount.InexactFloat64(),
		Type:   models.TransactionType(d.Type),
	}

	if d.TransactionDate != "" {
		date, err := time.Parse(models.DateLayout, d.TransactionDate)
		if err != nil {
			return Payload{}, fmt.Errorf("parsing transaction date %q: %w", d.TransactionDate, err)
		}
		ts := models.NewTimestamp(date)
		p.TransactionDate = &ts
	}
	if d.Description != "" {
		desc := d.Description
		p.Description = &desc
	}
	if d.CategoryID != "" {
		id, err := strconv.Atoi(d.CategoryID)
		if err != nil {
			return Payload{}, fmt.Errorf("parsing category id %q: %w", d.CategoryID, err)
		}
		p.CategoryID = &id
	}
	return p, nil
}

// Create projects the payload into a create request.
func (p Payload) Create() models.TransactionCreate {
	return models.TransactionCreate{
		Amount:          p.Amount,
		Type:            p.Type,
		TransactionDate: p.TransactionDate,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
	}
}

// Update projects the payload into an update request.
func (p Payload) Update() models.TransactionUpdate {
	amount := p.Amount
	txType := p.Type
	return models.TransactionUpdate{
		Amount:          &amount,
		Type:            &txType,
		TransactionDate: p.TransactionDate,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
	}
}
