package form

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
	"github.com/arampall/finance-tracker/internal/models"
	"github.com/arampall/finance-tracker/internal/testutil"
)

var fixedNow = time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)

func newTestController() *Controller {
	return NewController(WithClock(func() time.Time { return fixedNow }))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestOpen_Defaults(t *testing.T) {
	c := newTestController()
	c.Open(nil)

	s := c.Snapshot()
	if s.State != Editing {
		t.Fatalf("expected editing, got %s", s.State)
	}
	want := Draft{Type: "expense", TransactionDate: "2024-03-10"}
	if s.Draft != want {
		t.Errorf("expected %+v, got %+v", want, s.Draft)
	}
	if s.IsEdit() {
		t.Error("new draft should not be an edit")
	}
}

func TestOpen_FromExisting(t *testing.T) {
	c := newTestController()
	existing := &models.Transaction{
		ID:              7,
		Amount:          1234.5,
		Type:            models.TransactionTypeIncome,
		TransactionDate: models.NewTimestamp(time.Date(2024, 1, 15, 18, 45, 0, 0, time.UTC)),
		Description:     strPtr("salary"),
		CategoryID:      intPtr(3),
	}
	c.Open(existing)

	s := c.Snapshot()
	want := Draft{Amount: "1234.5", Type: "income", TransactionDate: "2024-01-15", Description: "salary", CategoryID: "3"}
	if s.Draft != want {
		t.Errorf("expected %+v, got %+v", want, s.Draft)
	}
	if !s.IsEdit() || s.Target.ID != 7 {
		t.Errorf("expected edit target 7, got %+v", s.Target)
	}
}

func TestOpen_FromExistingWithoutOptionalFields(t *testing.T) {
	c := newTestController()
	c.Open(&models.Transaction{ID: 1, Amount: 20, Type: models.TransactionTypeExpense})

	d := c.Snapshot().Draft
	if d.Amount != "20" || d.Description != "" || d.CategoryID != "" {
		t.Errorf("unexpected draft %+v", d)
	}
	if d.TransactionDate != "2024-03-10" {
		t.Errorf("expected missing date to default to today, got %q", d.TransactionDate)
	}
}

func TestSetField(t *testing.T) {
	c := newTestController()
	if err := c.SetField(FieldAmount, "1"); err == nil {
		t.Fatal("expected error when the form is not open")
	}

	c.Open(nil)
	testutil.AssertNoError(t, c.SetField(FieldAmount, "42"))
	testutil.AssertNoError(t, c.SetField(FieldDescription, "lunch"))

	d := c.Snapshot().Draft
	if d.Amount != "42" || d.Description != "lunch" || d.Type != "expense" {
		t.Errorf("expected only named fields to change, got %+v", d)
	}

	err := c.SetField("colour", "red")
	testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
}

func TestSubmit_CreatePayload(t *testing.T) {
	c := newTestController()
	c.Open(nil)
	_ = c.SetField(FieldAmount, "50.5")
	_ = c.SetField(FieldType, "expense")
	_ = c.SetField(FieldTransactionDate, "2024-01-15")
	_ = c.SetField(FieldCategoryID, "")
	_ = c.SetField(FieldDescription, "")

	var sent models.TransactionCreate
	err := c.Submit(context.Background(), func(_ context.Context, p Payload) error {
		if c.State() != Submitting {
			t.Errorf("expected submitting during submit, got %s", c.State())
		}
		sent = p.Create()
		return nil
	})
	testutil.AssertNoError(t, err)

	body, _ := json.Marshal(sent)
	want := `{"amount":50.5,"type":"expense","transaction_date":"2024-01-15T00:00:00.000Z"}`
	if string(body) != want {
		t.Errorf("expected %s, got %s", want, body)
	}
	if sent.CategoryID != nil || sent.Description != nil {
		t.Error("expected empty category and description to be omitted")
	}
	if c.State() != Idle {
		t.Errorf("expected idle after success, got %s", c.State())
	}
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	c := newTestController()
	c.Open(nil)
	_ = c.SetField(FieldAmount, "10")
	_ = c.SetField(FieldCategoryID, "99")
	before := c.Snapshot().Draft

	serverErr := apperrors.FromResponse(apperrors.ErrNotFound, http.StatusNotFound, "unexpected status 404", "Category not found")
	err := c.Submit(context.Background(), func(context.Context, Payload) error { return serverErr })
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected the submit error to be returned, got %v", err)
	}

	s := c.Snapshot()
	if s.State != Error || s.Message != "Category not found" {
		t.Errorf("expected error(Category not found), got %s(%q)", s.State, s.Message)
	}
	if s.Draft != before {
		t.Errorf("expected draft to be preserved, got %+v", s.Draft)
	}

	// Retry from the error state without re-entering data.
	testutil.AssertNoError(t, c.Submit(context.Background(), func(context.Context, Payload) error { return nil }))
	if c.State() != Idle {
		t.Errorf("expected idle after retry, got %s", c.State())
	}
}

func TestSubmit_FailureMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"raw message", errors.New("connection reset"), "connection reset"},
		{"generic fallback", &apperrors.AppError{Code: "X"}, DefaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController()
			c.Open(nil)
			_ = c.SetField(FieldAmount, "1")
			_ = c.Submit(context.Background(), func(context.Context, Payload) error { return tt.err })
			if got := c.Snapshot().Message; got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSubmit_InvalidDraftIsNotSent(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"missing amount", FieldAmount, ""},
		{"zero amount", FieldAmount, "0"},
		{"too precise", FieldAmount, "1.005"},
		{"bad type", FieldType, "transfer"},
		{"missing date", FieldTransactionDate, ""},
		{"non numeric category", FieldCategoryID, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController()
			c.Open(nil)
			_ = c.SetField(FieldAmount, "10")
			_ = c.SetField(tt.field, tt.value)

			called := false
			err := c.Submit(context.Background(), func(context.Context, Payload) error {
				called = true
				return nil
			})
			testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
			if called {
				t.Error("submit must not be called for an invalid draft")
			}
			s := c.Snapshot()
			if s.State != Error || s.Message == "" {
				t.Errorf("expected error state with message, got %s(%q)", s.State, s.Message)
			}
		})
	}
}

func TestSubmit_NotOpen(t *testing.T) {
	c := newTestController()
	err := c.Submit(context.Background(), func(context.Context, Payload) error { return nil })
	testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
}

func TestSubmit_RoundTripWithoutEdits(t *testing.T) {
	original := models.Transaction{
		ID:              12,
		Amount:          250.75,
		Type:            models.TransactionTypeIncome,
		TransactionDate: models.NewTimestamp(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)),
		Description:     strPtr("freelance"),
		CategoryID:      intPtr(5),
	}
	c := newTestController()
	c.Open(&original)

	var update models.TransactionUpdate
	testutil.AssertNoError(t, c.Submit(context.Background(), func(_ context.Context, p Payload) error {
		update = p.Update()
		return nil
	}))

	if update.Amount == nil || *update.Amount != original.Amount {
		t.Errorf("amount mismatch: %v", update.Amount)
	}
	if update.Type == nil || *update.Type != original.Type {
		t.Errorf("type mismatch: %v", update.Type)
	}
	if update.TransactionDate == nil || !update.TransactionDate.Equal(original.TransactionDate.Time) {
		t.Errorf("date mismatch: %v", update.TransactionDate)
	}
	if update.Description == nil || *update.Description != *original.Description {
		t.Errorf("description mismatch: %v", update.Description)
	}
	if update.CategoryID == nil || *update.CategoryID != *original.CategoryID {
		t.Errorf("category mismatch: %v", update.CategoryID)
	}
}

func TestCancel_FromAnyState(t *testing.T) {
	c := newTestController()
	c.Cancel()
	if c.State() != Idle {
		t.Fatalf("expected idle, got %s", c.State())
	}

	c.Open(nil)
	_ = c.SetField(FieldAmount, "0")
	_ = c.Submit(context.Background(), func(context.Context, Payload) error { return nil })
	if c.State() != Error {
		t.Fatalf("expected error state, got %s", c.State())
	}
	c.Cancel()
	s := c.Snapshot()
	if s.State != Idle || s.Draft != (Draft{}) || s.Message != "" || s.Target != nil {
		t.Errorf("expected a clean idle form, got %+v", s)
	}
}

func TestCancel_DuringSubmit(t *testing.T) {
	c := newTestController()
	c.Open(nil)
	_ = c.SetField(FieldAmount, "5")

	err := c.Submit(context.Background(), func(context.Context, Payload) error {
		c.Cancel()
		return errors.New("late failure")
	})
	if err == nil {
		t.Fatal("expected the submit error to be returned")
	}
	if c.State() != Idle {
		t.Errorf("expected cancel to win, got %s", c.State())
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Editing: "editing", Submitting: "submitting", Error: "error", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("expected %q, got %q", want, s.String())
		}
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr string
	}{
		{"valid amount", FieldAmount, "12.30", ""},
		{"amount with three decimals", FieldAmount, "1.234", "amount must be a number greater than 0 with at most 2 decimal places"},
		{"empty date", FieldTransactionDate, "", "transaction_date is required"},
		{"optional category", FieldCategoryID, "", ""},
		{"category text", FieldCategoryID, "food", "category_id must be a positive whole number"},
		{"category out of range", FieldCategoryID, "99999999999999999999", "category_id must be a positive whole number"},
		{"unknown field", "colour", "red", `unknown field "colour"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateField(tt.field, tt.value)
			if tt.wantErr == "" {
				testutil.AssertNoError(t, err)
				return
			}
			appErr := testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
			if appErr.Message != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, appErr.Message)
			}
		})
	}
}

func TestSubmit_ResultAfterReopenIsIgnored(t *testing.T) {
	ctx := context.Background()
	c := newTestController()
	c.Open(nil)
	_ = c.SetField(FieldAmount, "10")

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- c.Submit(ctx, func(context.Context, Payload) error {
			close(firstStarted)
			<-releaseFirst
			return errors.New("first failed")
		})
	}()
	<-firstStarted

	c.Cancel()
	c.Open(nil)
	testutil.AssertNoError(t, c.SetField(FieldAmount, "20"))

	secondStarted := make(chan struct{})
	releaseSecond := make(chan struct{})
	secondDone := make(chan error, 1)
	var sent float64
	go func() {
		secondDone <- c.Submit(ctx, func(_ context.Context, p Payload) error {
			sent = p.Amount
			close(secondStarted)
			<-releaseSecond
			return nil
		})
	}()
	<-secondStarted

	close(releaseFirst)
	if err := <-firstDone; err == nil {
		t.Fatal("expected the first submit to report its error")
	}
	if s := c.Snapshot(); s.State != Submitting || s.Message != "" {
		t.Fatalf("expected the second submit to be unaffected, got %s(%q)", s.State, s.Message)
	}

	close(releaseSecond)
	testutil.AssertNoError(t, <-secondDone)
	if sent != 20 {
		t.Errorf("expected the reopened draft to be sent, got %v", sent)
	}
	s := c.Snapshot()
	if s.State != Idle || s.Message != "" || s.Draft != (Draft{}) {
		t.Errorf("expected idle after the second submit, got %s(%q) %+v", s.State, s.Message, s.Draft)
	}
}

func TestSubmit_PayloadCarriesTarget(t *testing.T) {
	c := newTestController()
	c.Open(&models.Transaction{ID: 8, Amount: 3, Type: models.TransactionTypeExpense})

	var target *models.Transaction
	testutil.AssertNoError(t, c.Submit(context.Background(), func(_ context.Context, p Payload) error {
		target = p.Target
		return nil
	}))
	if target == nil || target.ID != 8 {
		t.Errorf("expected target 8, got %+v", target)
	}

	c.Open(nil)
	_ = c.SetField(FieldAmount, "1")
	testutil.AssertNoError(t, c.Submit(context.Background(), func(_ context.Context, p Payload) error {
		target = p.Target
		return nil
	}))
	if target != nil {
		t.Errorf("expected no target for a new transaction, got %+v", target)
	}
}

func TestOpen_EditKeepsServerCalendarDay(t *testing.T) {
	var tx models.Transaction
	body := `{"id":3,"amount":12.5,"type":"expense","transaction_date":"2024-01-15T22:00:00-05:00"}`
	testutil.AssertNoError(t, json.Unmarshal([]byte(body), &tx))

	c := newTestController()
	c.Open(&tx)
	if got := c.Snapshot().Draft.TransactionDate; got != "2024-01-15" {
		t.Errorf("expected 2024-01-15, got %s", got)
	}
}
