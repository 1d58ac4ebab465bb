package web

import (
	"github.com/arampall/finance-tracker/internal/filters"
	"github.com/arampall/finance-tracker/internal/form"
	"github.com/arampall/finance-tracker/internal/models"
	"github.com/arampall/finance-tracker/internal/page"
)

type indexView struct {
	Items            []itemView
	Loading          bool
	Error            string
	Filters          filters.Criteria
	HasActiveFilters bool
	Form             *formView
}

type itemView struct {
	ID          int
	Date        string
	Type        string
	Income      bool
	Amount      string
	Description string
	Category    string
}

type formView struct {
	Title       string
	SubmitLabel string
	Submitting  bool
	Error       string
	Draft       form.Draft
}

type confirmView struct {
	ID   int
	Item *itemView
}

func newIndexView(s page.State, hasActiveFilters bool) indexView {
	v := indexView{
		Items:            make([]itemView, 0, len(s.Items)),
		Loading:          s.Loading,
		Filters:          s.Filters,
		HasActiveFilters: hasActiveFilters,
	}
	for _, tx := range s.Items {
		v.Items = append(v.Items, newItemView(tx))
	}
	if s.Error != nil {
		v.Error = *s.Error
	}
	if s.FormVisible {
		v.Form = newFormView(s.Form)
	}
	return v
}

func newItemView(tx models.Transaction) itemView {
	return itemView{
		ID:          tx.ID,
		Date:        tx.TransactionDate.Date(),
		Type:        string(tx.Type),
		Income:      tx.Type == models.TransactionTypeIncome,
		Amount:      models.FormatAmount(tx.Amount),
		Description: tx.DescriptionText(),
		Category:    tx.CategoryLabel(),
	}
}

func newFormView(s form.Snapshot) *formView {
	v := &formView{
		Title:       "Add Transaction",
		SubmitLabel: "Create",
		Submitting:  s.State == form.Submitting,
		Error:       s.Message,
		Draft:       s.Draft,
	}
	if s.IsEdit() {
		v.Title = "Edit Transaction"
		v.SubmitLabel = "Update"
	}
	if v.Submitting {
		v.SubmitLabel = "Saving..."
	}
	return v
}
