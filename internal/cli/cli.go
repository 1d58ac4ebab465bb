// Package cli implements the fintrack command line: listing, showing, adding,
// editing and deleting transactions through the page controller.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/arampall/finance-tracker/internal/filters"
	"github.com/arampall/finance-tracker/internal/form"
	"github.com/arampall/finance-tracker/internal/logger"
	"github.com/arampall/finance-tracker/internal/models"
	"github.com/arampall/finance-tracker/internal/page"
)

const usage = `Usage: fintrack <command> [arguments]

Commands:
  list [-type income|expense] [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-category ID]
  show <id>
  add
  edit <id>
  delete <id> [-yes]
`

// ErrUsage is returned for unknown commands and malformed arguments.
var ErrUsage = errors.New("invalid usage")

// Getter fetches a single transaction.
type Getter interface {
	Get(ctx context.Context, id int) (*models.Transaction, error)
}

// App runs CLI commands.
type App struct {
	page     *page.Controller
	getter   Getter
	prompter Prompter
	out      io.Writer
	log      *zap.SugaredLogger
}

// Option configures an App.
type Option func(*App)

// WithPrompter replaces the interactive prompter.
func WithPrompter(p Prompter) Option {
	return func(a *App) { a.prompter = p }
}

// WithOutput sets where command output is written.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// NewApp creates an App over a page controller. getter serves the show command.
func NewApp(ctrl *page.Controller, getter Getter, opts ...Option) *App {
	a := &App{
		page:     ctrl,
		getter:   getter,
		prompter: HuhPrompter{},
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Named("cli")
	}
	return a
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	a.log.Debugw("Running command", "command", cmd, "args", rest)

	switch cmd {
	case "list":
		return a.list(ctx, rest)
	case "show":
		return a.show(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.remove(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	var criteria filters.Criteria
	fs.StringVar(&criteria.TransactionType, "type", "", "income or expense")
	fs.StringVar(&criteria.StartDate, "from", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&criteria.EndDate, "to", "", "end date (YYYY-MM-DD)")
	fs.StringVar(&criteria.CategoryID, "category", "", "category id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}

	if err := a.page.SetFilters(ctx, criteria); err != nil {
		return err
	}
	renderTransactions(a.out, a.page.Snapshot().Items)
	return nil
}

func (a *App) show(ctx context.Context, args []string) error {
	id, err := parseIDArgs(newFlagSet("show"), args)
	if err != nil {
		return err
	}
	tx, err := a.getter.Get(ctx, id)
	if err != nil {
		return err
	}
	renderTransaction(a.out, *tx)
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: add takes no arguments", ErrUsage)
	}
	a.page.OpenCreate()
	return a.editAndSubmit(ctx, "Add Transaction")
}

func (a *App) edit(ctx context.Context, args []string) error {
	id, err := parseIDArgs(newFlagSet("edit"), args)
	if err != nil {
		return err
	}
	if err := a.page.OpenEditByID(ctx, id); err != nil {
		return err
	}
	return a.editAndSubmit(ctx, "Edit Transaction")
}

// editAndSubmit prompts for the open draft and saves it. The form is closed
// when the user aborts or the save fails.
func (a *App) editAndSubmit(ctx context.Context, title string) error {
	draft := a.page.Snapshot().Form.Draft
	if err := a.prompter.EditDraft(ctx, title, &draft); err != nil {
		a.page.CloseForm()
		if errors.Is(err, ErrAborted) {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
		return err
	}

	fields := map[string]string{
		form.FieldAmount:          draft.Amount,
		form.FieldType:            draft.Type,
		form.FieldTransactionDate: draft.TransactionDate,
		form.FieldDescription:     draft.Description,
		form.FieldCategoryID:      draft.CategoryID,
	}
	for name, value := range fields {
		if err := a.page.SetFormField(name, value); err != nil {
			a.page.CloseForm()
			return err
		}
	}

	if err := a.page.SubmitForm(ctx); err != nil {
		a.page.CloseForm()
		return fmt.Errorf("saving transaction: %w", err)
	}
	fmt.Fprintln(a.out, "Transaction saved.")
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	yes := fs.Bool("yes", false, "delete without asking")
	id, err := parseIDArgs(fs, args)
	if err != nil {
		return err
	}

	confirmed := false
	confirmer := page.ConfirmFunc(func(ctx context.Context, id int) (bool, error) {
		if *yes {
			confirmed = true
			return true, nil
		}
		ok, err := a.prompter.Confirm(ctx, fmt.Sprintf("Delete transaction %d?", id))
		if errors.Is(err, ErrAborted) {
			return false, nil
		}
		confirmed = ok
		return ok, err
	})

	if err := a.page.Delete(ctx, id, confirmer); err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	fmt.Fprintf(a.out, "Deleted transaction %d.\n", id)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseIDArgs parses a single positional id. Flags may come before or after it.
func parseIDArgs(fs *flag.FlagSet, args []string) (int, error) {
	if err := fs.Parse(args); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		return 0, fmt.Errorf("%w: %s requires a transaction id", ErrUsage, fs.Name())
	}
	raw := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return 0, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid transaction id %q", ErrUsage, raw)
	}
	return id, nil
}
