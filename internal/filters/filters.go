// Package filters holds the transaction list's filter criteria.
package filters

import (
	"strconv"
	"sync"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
	"github.com/arampall/finance-tracker/internal/models"
	"github.com/arampall/finance-tracker/internal/validator"
)

// Criteria are the filters exposed on the transactions page. An empty string
// means the criterion is not set.
type Criteria struct {
	TransactionType string `form:"transaction_type" validate:"omitempty,transaction_type"`
	StartDate       string `form:"start_date" validate:"omitempty,date_only"`
	EndDate         string `form:"end_date" validate:"omitempty,date_only"`
	CategoryID      string `form:"category_id" validate:"omitempty,record_id"`
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return c == Criteria{}
}

// Validate checks each present criterion.
func (c Criteria) Validate() error {
	if err := validator.Get().Struct(c); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, validator.Message(err))
	}
	return nil
}

// Holder stores the current criteria plus the client-only paging hints.
// Updates replace all four criteria at once.
type Holder struct {
	mu       sync.RWMutex
	criteria Criteria
	skip     *int
	limit    *int
}

// NewHolder returns a holder with no criteria set.
func NewHolder() *Holder {
	return &Holder{}
}

// Get returns the current criteria.
func (h *Holder) Get() Criteria {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.criteria
}

// Set replaces the criteria. Invalid criteria are rejected and the current
// state is kept. It reports whether the stored values changed.
func (h *Holder) Set(c Criteria) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	changed := h.criteria != c
	h.criteria = c
	return changed, nil
}

// Clear resets all four criteria to empty and reports whether anything changed.
func (h *Holder) Clear() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	changed := !h.criteria.IsEmpty()
	h.criteria = Criteria{}
	return changed
}

// HasActive reports whether any criterion is set.
func (h *Holder) HasActive() bool {
	return !h.Get().IsEmpty()
}

// SetPaging sets the skip/limit hints sent with every list request.
func (h *Holder) SetPaging(skip, limit *int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.skip = copyInt(skip)
	h.limit = copyInt(limit)
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Active converts the present criteria into a list filter.
func (h *Holder) Active() models.TransactionFilter {
	h.mu.RLock()
	defer h.mu.RUnlock()

	f := models.TransactionFilter{
		Skip:  copyInt(h.skip),
		Limit: copyInt(h.limit),
	}

	c := h.criteria
	if c.TransactionType != "" {
		t := models.TransactionType(c.TransactionType)
		f.TransactionType = &t
	}
	if c.StartDate != "" {
		start := c.StartDate
		f.StartDate = &start
	}
	if c.EndDate != "" {
		end := c.EndDate
		f.EndDate = &end
	}
	if c.CategoryID != "" {
		// Set only stores ids that pass record_id, so this parse cannot fail.
		id, _ := strconv.Atoi(c.CategoryID)
		f.CategoryID = &id
	}
	return f
}
