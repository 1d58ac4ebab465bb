// Package page holds the transactions page state and coordinates the list,
// the filters and the form against the transactions API.
package page

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
	"github.com/arampall/finance-tracker/internal/filters"
	"github.com/arampall/finance-tracker/internal/form"
	"github.com/arampall/finance-tracker/internal/logger"
	"github.com/arampall/finance-tracker/internal/models"
)

// Messages shown when a failure carries no message of its own.
const (
	FetchErrorMessage  = "Failed to fetch transactions"
	DeleteErrorMessage = "Failed to delete transaction"
)

// TransactionAPI is the subset of the transactions client the page uses.
type TransactionAPI interface {
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	Get(ctx context.Context, id int) (*models.Transaction, error)
	Create(ctx context.Context, payload models.TransactionCreate) (*models.Transaction, error)
	Update(ctx context.Context, id int, payload models.TransactionUpdate) (*models.Transaction, error)
	Delete(ctx context.Context, id int) error
}

// Confirmer asks the user to confirm deleting a transaction.
type Confirmer interface {
	Confirm(ctx context.Context, id int) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, id int) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, id int) (bool, error) { return f(ctx, id) }

// Confirmed accepts every deletion. It is used when the confirmation was
// already collected, such as a submitted confirmation page.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, int) (bool, error) { return true, nil })

// State is a snapshot of the page.
type State struct {
	Items         []models.Transaction
	Loading       bool
	Error         *string
	FormVisible   bool
	EditingTarget *models.Transaction
	Filters       filters.Criteria
	Form          form.Snapshot
}

// Controller owns the page state. The mutex is never held across a call to
// the API, and listeners run outside it.
type Controller struct {
	api     TransactionAPI
	filters *filters.Holder
	form    *form.Controller
	log     *zap.SugaredLogger

	mu        sync.Mutex
	items     []models.Transaction
	loading   bool
	err       *string
	seq       uint64
	listeners map[int]func(State)
	nextID    int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) { c.log = log }
}

// WithForm replaces the form controller.
func WithForm(f *form.Controller) Option {
	return func(c *Controller) { c.form = f }
}

// NewController creates a page controller. A nil holder starts with no filters.
func NewController(api TransactionAPI, holder *filters.Holder, opts ...Option) *Controller {
	if holder == nil {
		holder = filters.NewHolder()
	}
	c := &Controller{
		api:       api,
		filters:   holder,
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.form == nil {
		c.form = form.NewController()
	}
	if c.log == nil {
		c.log = logger.Named("page")
	}
	return c
}

// Mount loads the list with the initial filters.
func (c *Controller) Mount(ctx context.Context) error {
	return c.fetch(ctx)
}

// Refresh re-fetches the list with the current filters.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.fetch(ctx)
}

// SetFilters replaces the filter criteria and re-fetches. Invalid criteria are
// rejected without a request.
func (c *Controller) SetFilters(ctx context.Context, criteria filters.Criteria) error {
	if _, err := c.filters.Set(criteria); err != nil {
		return err
	}
	return c.fetch(ctx)
}

// ClearFilters resets every criterion and re-fetches.
func (c *Controller) ClearFilters(ctx context.Context) error {
	c.filters.Clear()
	return c.fetch(ctx)
}

// HasActiveFilters reports whether any filter criterion is set.
func (c *Controller) HasActiveFilters() bool {
	return c.filters.HasActive()
}

// fetch lists transactions with the active filters. Each call takes a new
// sequence number and only the latest one may update the page.
func (c *Controller) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.err = nil
	c.mu.Unlock()
	c.notify()

	items, err := c.api.List(ctx, c.filters.Active())

	c.mu.Lock()
	if seq != c.seq {
		latest := c.seq
		c.mu.Unlock()
		c.log.Debugw("Discarding stale list response", "seq", seq, "latest", latest)
		return nil
	}
	c.loading = false
	if err != nil {
		msg := apperrors.UserMessage(err, FetchErrorMessage)
		c.err = &msg
	} else {
		c.items = items
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warnw("Failed to fetch transactions", "error", err)
		return err
	}
	return nil
}

// OpenCreate opens an empty form for a new transaction.
func (c *Controller) OpenCreate() {
	c.form.Open(nil)
	c.notify()
}

// OpenEdit opens the form initialised from tx.
func (c *Controller) OpenEdit(tx models.Transaction) {
	c.form.Open(&tx)
	c.notify()
}

// OpenEditByID opens the form for the transaction with the given id, taking it
// from the loaded list or fetching it when it is not there.
func (c *Controller) OpenEditByID(ctx context.Context, id int) error {
	if tx, ok := c.Find(id); ok {
		c.OpenEdit(tx)
		return nil
	}
	tx, err := c.api.Get(ctx, id)
	if err != nil {
		return err
	}
	c.OpenEdit(*tx)
	return nil
}

// Find returns the loaded transaction with the given id.
func (c *Controller) Find(id int) (models.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tx := range c.items {
		if tx.ID == id {
			return tx, true
		}
	}
	return models.Transaction{}, false
}

// CloseForm discards the draft and hides the form.
func (c *Controller) CloseForm() {
	c.form.Cancel()
	c.notify()
}

// SetFormField updates one draft field.
func (c *Controller) SetFormField(name, value string) error {
	if err := c.form.SetField(name, value); err != nil {
		return err
	}
	c.notify()
	return nil
}

// SubmitForm creates or updates the transaction in the form. On success the
// form closes and the list is re-fetched. On failure the message stays in the
// form and the page error is left alone.
func (c *Controller) SubmitForm(ctx context.Context) error {
	err := c.form.Submit(ctx, func(ctx context.Context, p form.Payload) error {
		c.notify()
		if p.Target == nil {
			_, err := c.api.Create(ctx, p.Create())
			return err
		}
		_, err := c.api.Update(ctx, p.Target.ID, p.Update())
		return err
	})
	c.notify()
	if err != nil {
		c.log.Infow("Transaction not saved", "error", err)
		return err
	}

	_ = c.fetch(ctx)
	return nil
}

// Delete removes a transaction after confirmation. A declined confirmation
// changes nothing. A failed delete sets the page error.
func (c *Controller) Delete(ctx context.Context, id int, confirmer Confirmer) error {
	ok, err := confirmer.Confirm(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := c.api.Delete(ctx, id); err != nil {
		msg := apperrors.UserMessage(err, DeleteErrorMessage)
		c.mu.Lock()
		c.err = &msg
		c.mu.Unlock()
		c.notify()
		c.log.Warnw("Failed to delete transaction", "id", id, "error", err)
		return err
	}

	_ = c.fetch(ctx)
	return nil
}

// DismissError clears the page error banner.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.err = nil
	c.mu.Unlock()
	c.notify()
}

// Subscribe registers fn to receive a snapshot after every state update.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Snapshot returns a copy of the page state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	s := c.snapshotLocked()
	c.mu.Unlock()
	return c.withForm(s)
}

func (c *Controller) snapshotLocked() State {
	s := State{
		Loading: c.loading,
		Filters: c.filters.Get(),
	}
	if c.items != nil {
		s.Items = make([]models.Transaction, len(c.items))
		copy(s.Items, c.items)
	}
	if c.err != nil {
		msg := *c.err
		s.Error = &msg
	}
	return s
}

func (c *Controller) withForm(s State) State {
	s.Form = c.form.Snapshot()
	s.FormVisible = s.Form.State != form.Idle
	s.EditingTarget = s.Form.Target
	return s
}

func (c *Controller) notify() {
	c.mu.Lock()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	s := c.snapshotLocked()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	c.mu.Unlock()

	s = c.withForm(s)
	for _, fn := range fns {
		fn(s)
	}
}
