package filters

import (
	"testing"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
	"github.com/arampall/finance-tracker/internal/testutil"
)

func TestHolder_EmptyByDefault(t *testing.T) {
	h := NewHolder()
	if h.HasActive() {
		t.Error("expected no active criteria")
	}
	f := h.Active()
	if f.TransactionType != nil || f.StartDate != nil || f.EndDate != nil || f.CategoryID != nil || f.Skip != nil || f.Limit != nil {
		t.Errorf("expected empty filter, got %+v", f)
	}
}

func TestHolder_SetReplacesAllFields(t *testing.T) {
	h := NewHolder()
	_, err := h.Set(Criteria{TransactionType: "income", StartDate: "2024-01-01", CategoryID: "3"})
	testutil.AssertNoError(t, err)

	changed, err := h.Set(Criteria{EndDate: "2024-02-01"})
	testutil.AssertNoError(t, err)
	if !changed {
		t.Error("expected change to be reported")
	}

	got := h.Get()
	if got != (Criteria{EndDate: "2024-02-01"}) {
		t.Errorf("expected replace-all semantics, got %+v", got)
	}
}

func TestHolder_SetSameValuesReportsNoChange(t *testing.T) {
	h := NewHolder()
	c := Criteria{TransactionType: "expense"}
	_, _ = h.Set(c)
	changed, err := h.Set(c)
	testutil.AssertNoError(t, err)
	if changed {
		t.Error("expected no change")
	}
}

func TestHolder_SetRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
	}{
		{"unknown type", Criteria{TransactionType: "transfer"}},
		{"bad start date", Criteria{StartDate: "01/02/2024"}},
		{"bad end date", Criteria{EndDate: "tomorrow"}},
		{"non numeric category", Criteria{CategoryID: "food"}},
		{"category out of int range", Criteria{CategoryID: "99999999999999999999"}},
		{"zero category", Criteria{CategoryID: "0"}},
		{"negative category", Criteria{CategoryID: "-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHolder()
			_, _ = h.Set(Criteria{TransactionType: "income"})

			_, err := h.Set(tt.criteria)
			testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
			if h.Get() != (Criteria{TransactionType: "income"}) {
				t.Errorf("expected state to be kept, got %+v", h.Get())
			}
		})
	}
}

func TestHolder_Clear(t *testing.T) {
	h := NewHolder()
	_, _ = h.Set(Criteria{TransactionType: "income", StartDate: "2024-01-01", EndDate: "2024-01-31", CategoryID: "1"})

	if !h.Clear() {
		t.Error("expected clear to report a change")
	}
	if h.HasActive() {
		t.Error("expected no active criteria after clear")
	}
	if h.Clear() {
		t.Error("expected second clear to report no change")
	}
}

func TestHolder_ActiveExactlyOneField(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		check    func(t *testing.T, h *Holder)
	}{
		{"type", Criteria{TransactionType: "income"}, func(t *testing.T, h *Holder) {
			f := h.Active()
			if f.TransactionType == nil || *f.TransactionType != "income" || f.StartDate != nil || f.EndDate != nil || f.CategoryID != nil {
				t.Errorf("unexpected filter %+v", f)
			}
		}},
		{"start date", Criteria{StartDate: "2024-01-01"}, func(t *testing.T, h *Holder) {
			f := h.Active()
			if f.StartDate == nil || *f.StartDate != "2024-01-01" || f.TransactionType != nil || f.EndDate != nil || f.CategoryID != nil {
				t.Errorf("unexpected filter %+v", f)
			}
		}},
		{"end date", Criteria{EndDate: "2024-01-31"}, func(t *testing.T, h *Holder) {
			f := h.Active()
			if f.EndDate == nil || *f.EndDate != "2024-01-31" || f.TransactionType != nil || f.StartDate != nil || f.CategoryID != nil {
				t.Errorf("unexpected filter %+v", f)
			}
		}},
		{"category", Criteria{CategoryID: "12"}, func(t *testing.T, h *Holder) {
			f := h.Active()
			if f.CategoryID == nil || *f.CategoryID != 12 || f.TransactionType != nil || f.StartDate != nil || f.EndDate != nil {
				t.Errorf("unexpected filter %+v", f)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHolder()
			_, err := h.Set(tt.criteria)
			testutil.AssertNoError(t, err)
			tt.check(t, h)
		})
	}
}

func TestHolder_Paging(t *testing.T) {
	h := NewHolder()
	skip, limit := 20, 10
	h.SetPaging(&skip, &limit)
	skip = 99

	f := h.Active()
	if f.Skip == nil || *f.Skip != 20 {
		t.Errorf("expected skip 20, got %v", f.Skip)
	}
	if f.Limit == nil || *f.Limit != 10 {
		t.Errorf("expected limit 10, got %v", f.Limit)
	}
	if h.HasActive() {
		t.Error("paging hints are not page filters")
	}
}
