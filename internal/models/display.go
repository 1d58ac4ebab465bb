package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with two decimal places.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// SignedAmount renders the amount with + for income and - for expenses.
func (t Transaction) SignedAmount() string {
	if t.Type == TransactionTypeIncome {
		return "+" + FormatAmount(t.Amount)
	}
	return "-" + FormatAmount(t.Amount)
}

// CategoryLabel returns the category name, the bare category id when the
// category was not embedded, or "-" when there is none.
func (t Transaction) CategoryLabel() string {
	switch {
	case t.Category != nil:
		return t.Category.Name
	case t.CategoryID != nil:
		return "#" + strconv.Itoa(*t.CategoryID)
	default:
		return "-"
	}
}

// DescriptionText returns the description or an empty string.
func (t Transaction) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
