package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/arampall/finance-tracker/internal/form"
)

// ErrAborted is returned by a Prompter when the user quits a prompt.
var ErrAborted = errors.New("aborted")

// Prompter collects input from the user.
type Prompter interface {
	// EditDraft lets the user edit d in place.
	EditDraft(ctx context.Context, title string, d *form.Draft) error
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title string) (bool, error)
}

// HuhPrompter prompts with interactive terminal forms.
type HuhPrompter struct{}

// EditDraft implements Prompter. Fields are validated as they are entered.
func (HuhPrompter) EditDraft(ctx context.Context, title string, d *form.Draft) error {
	f := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Income", "income"),
					huh.NewOption("Expense", "expense"),
				).
				Value(&d.Type),
			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&d.Amount).
				Validate(fieldValidator(form.FieldAmount)),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&d.TransactionDate).
				Validate(fieldValidator(form.FieldTransactionDate)),
			huh.NewInput().
				Title("Category ID (optional)").
				Placeholder("Category ID").
				Value(&d.CategoryID).
				Validate(fieldValidator(form.FieldCategoryID)),
			huh.NewText().
				Title("Description").
				Placeholder("Transaction description").
				CharLimit(500).
				Value(&d.Description),
		).Title(title),
	)
	return mapAbort(f.RunWithContext(ctx))
}

// Confirm implements Prompter.
func (HuhPrompter) Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	f := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := mapAbort(f.RunWithContext(ctx)); err != nil {
		return false, err
	}
	return ok, nil
}

func fieldValidator(name string) func(string) error {
	return func(value string) error {
		return form.ValidateField(name, value)
	}
}

func mapAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
