// Package testutil provides test helpers, including an in-memory fake of the
// transactions REST API served by Gin.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arampall/finance-tracker/internal/models"
	"github.com/arampall/finance-tracker/internal/validator"
)

// RecordedRequest is a request observed by the fake API.
type RecordedRequest struct {
	Method    string
	Path      string
	RawQuery  string
	RequestID string
	Body      string
}

type injectedFailure struct {
	method string
	status int
	detail string
}

// FakeAPI is an in-memory implementation of the transactions API.
type FakeAPI struct {
	server *httptest.Server

	mu           sync.Mutex
	transactions map[int]models.Transaction
	categories   map[int]models.Category
	nextID       int
	requests     []RecordedRequest
	failures     []injectedFailure
	now          func() time.Time
}

// NewFakeAPI starts a fake API server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Register()

	f := &FakeAPI{
		transactions: make(map[int]models.Transaction),
		categories:   make(map[int]models.Category),
		nextID:       1,
		now:          func() time.Time { return time.Now().UTC() },
	}
	f.server = httptest.NewServer(f.router())
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the base URL of the fake server.
func (f *FakeAPI) URL() string { return f.server.URL }

// Client returns an HTTP client for the fake server.
func (f *FakeAPI) Client() *http.Client { return f.server.Client() }

// AddCategory registers a category that transactions may reference.
func (f *FakeAPI) AddCategory(id int, name string) models.Category {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := models.NewTimestamp(f.now())
	cat := models.Category{ID: id, Name: name, UserID: 1, CreatedAt: now, UpdatedAt: now}
	f.categories[id] = cat
	return cat
}

// Seed stores tx as-is, assigning an id when tx.ID is zero.
func (f *FakeAPI) Seed(tx models.Transaction) models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	if tx.ID == 0 {
		tx.ID = f.nextID
	}
	if tx.ID >= f.nextID {
		f.nextID = tx.ID + 1
	}
	if tx.UserID == 0 {
		tx.UserID = 1
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = models.NewTimestamp(f.now())
		tx.UpdatedAt = tx.CreatedAt
	}
	f.transactions[tx.ID] = tx
	return f.withCategory(tx)
}

// Transaction returns the stored transaction with id.
func (f *FakeAPI) Transaction(id int) (models.Transaction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[id]
	return tx, ok
}

// Len returns the number of stored transactions.
func (f *FakeAPI) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transactions)
}

// FailNext makes the next request with method respond with status and a
// {"detail": detail} body.
func (f *FakeAPI) FailNext(method string, status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, injectedFailure{method: method, status: status, detail: detail})
}

// Requests returns the requests observed so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request.
func (f *FakeAPI) LastRequest() RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *FakeAPI) router() *gin.Engine {
	r := gin.New()
	r.Use(f.record(), f.injectFailures())

	api := r.Group("/api/transactions")
	api.GET("", f.list)
	api.POST("", f.create)
	api.GET("/:id", f.get)
	api.PUT("/:id", f.update)
	api.DELETE("/:id", f.delete)
	return r
}

func (f *FakeAPI) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.Request.Body = newBody(body)

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			RawQuery:  c.Request.URL.RawQuery,
			RequestID: c.GetHeader("X-Request-ID"),
			Body:      string(body),
		})
		f.mu.Unlock()
		c.Next()
	}
}

func (f *FakeAPI) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		var failure *injectedFailure
		for i, fl := range f.failures {
			if fl.method == c.Request.Method {
				failure = &fl
				f.failures = append(f.failures[:i], f.failures[i+1:]...)
				break
			}
		}
		f.mu.Unlock()

		if failure != nil {
			c.AbortWithStatusJSON(failure.status, gin.H{"detail": failure.detail})
			return
		}
		c.Next()
	}
}

type listQuery struct {
	Skip            int    `form:"skip" binding:"omitempty,min=0"`
	Limit           *int   `form:"limit" binding:"omitempty,min=1,max=1000"`
	StartDate       string `form:"start_date"`
	EndDate         string `form:"end_date"`
	TransactionType string `form:"transaction_type" binding:"omitempty,transaction_type"`
	CategoryID      *int   `form:"category_id"`
}

func (f *FakeAPI) list(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		validationError(c, "query", err)
		return
	}
	limit := 100
	if q.Limit != nil {
		limit = *q.Limit
	}

	var start, end *time.Time
	for _, p := range []struct {
		raw string
		dst **time.Time
	}{{q.StartDate, &start}, {q.EndDate, &end}} {
		if p.raw == "" {
			continue
		}
		t, err := models.ParseTimestamp(p.raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"loc": []string{"query"}, "msg": err.Error()}}})
			return
		}
		*p.dst = &t
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Transaction{}
	for _, tx := range f.transactions {
		if start != nil && tx.TransactionDate.Before(*start) {
			continue
		}
		if end != nil && tx.TransactionDate.After(*end) {
			continue
		}
		if q.TransactionType != "" && string(tx.Type) != q.TransactionType {
			continue
		}
		if q.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *q.CategoryID) {
			continue
		}
		out = append(out, f.withCategory(tx))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TransactionDate.Equal(out[j].TransactionDate.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].TransactionDate.After(out[j].TransactionDate.Time)
	})

	if q.Skip >= len(out) {
		out = []models.Transaction{}
	} else {
		out = out[q.Skip:]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	c.JSON(http.StatusOK, out)
}

func (f *FakeAPI) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tx, found := f.transactions[id]
	if !found {
		notFound(c, "Transaction not found")
		return
	}
	c.JSON(http.StatusOK, f.withCategory(tx))
}

type createRequest struct {
	Amount          float64           `json:"amount" binding:"required,gt=0"`
	Type            string            `json:"type" binding:"required,transaction_type"`
	TransactionDate *models.Timestamp `json:"transaction_date"`
	Description     *string           `json:"description" binding:"omitempty,max=500"`
	CategoryID      *int              `json:"category_id"`
}

func (f *FakeAPI) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "body", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if req.CategoryID != nil && *req.CategoryID != 0 {
		if _, ok := f.categories[*req.CategoryID]; !ok {
			notFound(c, "Category not found")
			return
		}
	}

	now := models.NewTimestamp(f.now())
	tx := models.Transaction{
		ID:              f.nextID,
		UserID:          1,
		Amount:          req.Amount,
		Type:            models.TransactionType(req.Type),
		TransactionDate: now,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.TransactionDate != nil {
		tx.TransactionDate = *req.TransactionDate
	}
	f.nextID++
	f.transactions[tx.ID] = tx

	c.JSON(http.StatusCreated, f.withCategory(tx))
}

type updateRequest struct {
	Amount          *float64          `json:"amount" binding:"omitempty,gt=0"`
	Type            *string           `json:"type" binding:"omitempty,transaction_type"`
	TransactionDate *models.Timestamp `json:"transaction_date"`
	Description     *string           `json:"description" binding:"omitempty,max=500"`
	CategoryID      *int              `json:"category_id"`
}

func (f *FakeAPI) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "body", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tx, found := f.transactions[id]
	if !found {
		notFound(c, "Transaction not found")
		return
	}
	if req.CategoryID != nil {
		if _, ok := f.categories[*req.CategoryID]; !ok {
			notFound(c, "Category not found")
			return
		}
		tx.CategoryID = req.CategoryID
	}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.Type != nil {
		tx.Type = models.TransactionType(*req.Type)
	}
	if req.TransactionDate != nil {
		tx.TransactionDate = *req.TransactionDate
	}
	if req.Description != nil {
		tx.Description = req.Description
	}
	tx.UpdatedAt = models.NewTimestamp(f.now())
	f.transactions[id] = tx

	c.JSON(http.StatusOK, f.withCategory(tx))
}

func (f *FakeAPI) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, found := f.transactions[id]; !found {
		notFound(c, "Transaction not found")
		return
	}
	delete(f.transactions, id)
	c.Status(http.StatusNoContent)
}

// withCategory embeds the referenced category. Callers hold f.mu.
func (f *FakeAPI) withCategory(tx models.Transaction) models.Transaction {
	if tx.CategoryID != nil {
		if cat, ok := f.categories[*tx.CategoryID]; ok {
			tx.Category = &cat
		}
	}
	return tx
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{
			"loc": []string{"path", "id"},
			"msg": fmt.Sprintf("invalid id %q", c.Param("id")),
		}}})
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context, detail string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": detail})
}

func validationError(c *gin.Context, location string, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{
		"loc": []string{location},
		"msg": validator.Message(err),
	}}})
}
