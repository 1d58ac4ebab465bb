// Package form implements the transaction form: a draft, its validation and
// the idle/editing/submitting/error lifecycle around a caller-supplied submit.
package form

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
	"github.com/arampall/finance-tracker/internal/models"
	"github.com/arampall/finance-tracker/internal/validator"
)

// DefaultErrorMessage is shown when a failed submission carries no message.
const DefaultErrorMessage = "Failed to save transaction"

// State is the form lifecycle state.
type State int

const (
	Idle State = iota
	Editing
	Submitting
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

var (
	errNotOpen = apperrors.WithMessage(apperrors.ErrInvalidInput, "form is not open")
	errBusy    = apperrors.WithMessage(apperrors.ErrInvalidInput, "submission already in progress")
)

// SubmitFunc sends a converted draft to the API.
type SubmitFunc func(ctx context.Context, p Payload) error

// Snapshot is a copy of the form's observable state.
type Snapshot struct {
	State   State
	Draft   Draft
	Target  *models.Transaction
	Message string
}

// IsEdit reports whether the form edits an existing transaction.
func (s Snapshot) IsEdit() bool { return s.Target != nil }

// Controller owns the form state. It is safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	state   State
	draft   Draft
	target  *models.Transaction
	message string
	// gen changes on every Open and Cancel, so a submission can tell
	// whether the form it started from is still the current one.
	gen     uint64
	now     func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for the default transaction date.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController returns an idle form controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open starts editing. With a nil existing transaction the draft gets the
// defaults for a new expense dated today.
func (c *Controller) Open(existing *models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.state = Editing
	c.message = ""
	c.target = nil
	if existing != nil {
		target := *existing
		c.target = &target
	}
	c.draft = NewDraft(c.target, c.now())
}

// SetField updates one draft field. Edits are allowed while editing or after
// a failed submission.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Idle:
		return errNotOpen
	case Submitting:
		return errBusy
	}
	if err := c.draft.set(name, value); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// Validate checks the draft against the form's input constraints.
func (c *Controller) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validateDraft(c.draft)
}

// Submit converts the draft and calls submit. On success the form returns to
// idle and the draft is dropped; closing the form and refreshing the list is
// up to the caller. On failure the form moves to the error state with the
// failure's message and keeps the draft so the user can retry. A draft that
// fails validation is never submitted. If the form was cancelled or reopened
// while submit ran, the result is returned but the form is left alone.
func (c *Controller) Submit(ctx context.Context, submit SubmitFunc) error {
	c.mu.Lock()
	switch c.state {
	case Idle:
		c.mu.Unlock()
		return errNotOpen
	case Submitting:
		c.mu.Unlock()
		return errBusy
	}

	payload, err := c.prepare()
	if err != nil {
		c.state = Error
		c.message = apperrors.UserMessage(err, DefaultErrorMessage)
		c.mu.Unlock()
		return err
	}
	c.state = Submitting
	c.message = ""
	gen := c.gen
	c.mu.Unlock()

	err = submit(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return err
	}
	if err != nil {
		c.state = Error
		c.message = apperrors.UserMessage(err, DefaultErrorMessage)
		return err
	}
	c.state = Idle
	c.draft = Draft{}
	c.target = nil
	return nil
}

// prepare validates and converts the draft. Callers hold c.mu.
func (c *Controller) prepare() (Payload, error) {
	if err := validateDraft(c.draft); err != nil {
		return Payload{}, err
	}
	p, err := c.draft.Payload()
	if err != nil {
		return Payload{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if c.target != nil {
		target := *c.target
		p.Target = &target
	}
	return p, nil
}

// Cancel discards the draft and returns to idle from any state.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = Idle
	c.draft = Draft{}
	c.target = nil
	c.message = ""
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the form state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{State: c.state, Draft: c.draft, Message: c.message}
	if c.target != nil {
		target := *c.target
		s.Target = &target
	}
	return s
}

// draftFields maps field names to Draft struct fields.
var draftFields = map[string]string{
	FieldAmount:          "Amount",
	FieldType:            "Type",
	FieldTransactionDate: "TransactionDate",
	FieldDescription:     "Description",
	FieldCategoryID:      "CategoryID",
}

// ValidateField checks one field value against the draft rules, for
// prompts that validate as the user types.
func ValidateField(name, value string) error {
	var d Draft
	if err := d.set(name, value); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if err := validator.Get().StructPartial(d, draftFields[name]); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, validator.Message(err))
	}
	return nil
}

func validateDraft(d Draft) error {
	if err := validator.Get().Struct(d); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, validator.Message(err))
	}
	return nil
}
