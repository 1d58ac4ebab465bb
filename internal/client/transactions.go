// Package client provides an HTTP client for the finance tracker transactions API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
	"github.com/arampall/finance-tracker/internal/logger"
	"github.com/arampall/finance-tracker/internal/models"
)

// TransactionsPath is the collection path of the transaction resource.
const TransactionsPath = "/api/transactions"

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// TransactionClient communicates with the transactions API.
type TransactionClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
	requestID  func() string
}

// Option configures a TransactionClient.
type Option func(*TransactionClient)

// WithLogger sets the logger used for request logging.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *TransactionClient) { c.log = log }
}

// WithRequestIDs overrides the generator for X-Request-ID headers.
func WithRequestIDs(fn func() string) Option {
	return func(c *TransactionClient) { c.requestID = fn }
}

// NewTransactionClient creates a new transactions API client.
func NewTransactionClient(baseURL string, httpClient *http.Client, opts ...Option) *TransactionClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &TransactionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		requestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("client")
	}
	return c
}

// List fetches the transactions matching filter. Only the filter fields that
// are present are sent.
func (c *TransactionClient) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	path := TransactionsPath
	if q := EncodeFilter(filter); q != "" {
		path += "?" + q
	}

	var transactions []models.Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &transactions); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// Get fetches a single transaction. A missing id yields an error matching
// apperrors.ErrNotFound.
func (c *TransactionClient) Get(ctx context.Context, id int) (*models.Transaction, error) {
	var tx models.Transaction
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, &tx); err != nil {
		return nil, fmt.Errorf("fetching transaction %d: %w", id, err)
	}
	return &tx, nil
}

// Create creates a transaction and returns the server's canonical record.
func (c *TransactionClient) Create(ctx context.Context, payload models.TransactionCreate) (*models.Transaction, error) {
	var tx models.Transaction
	if err := c.do(ctx, http.MethodPost, TransactionsPath, payload, &tx); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	return &tx, nil
}

// Update sends the present fields of payload for transaction id.
func (c *TransactionClient) Update(ctx context.Context, id int, payload models.TransactionUpdate) (*models.Transaction, error) {
	var tx models.Transaction
	if err := c.do(ctx, http.MethodPut, itemPath(id), payload, &tx); err != nil {
		return nil, fmt.Errorf("updating transaction %d: %w", id, err)
	}
	return &tx, nil
}

// Delete removes transaction id. Deleting an id twice fails with not found.
func (c *TransactionClient) Delete(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, itemPath(id), nil, nil); err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	return nil
}

// EncodeFilter serialises the present filter fields as a query string in a
// fixed order. Nil pointers and empty strings are skipped.
func EncodeFilter(f models.TransactionFilter) string {
	var params []string
	add := func(key, value string) {
		params = append(params, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}

	if f.Skip != nil {
		add("skip", strconv.Itoa(*f.Skip))
	}
	if f.Limit != nil {
		add("limit", strconv.Itoa(*f.Limit))
	}
	if f.StartDate != nil && *f.StartDate != "" {
		add("start_date", *f.StartDate)
	}
	if f.EndDate != nil && *f.EndDate != "" {
		add("end_date", *f.EndDate)
	}
	if f.TransactionType != nil && *f.TransactionType != "" {
		add("transaction_type", string(*f.TransactionType))
	}
	if f.CategoryID != nil {
		add("category_id", strconv.Itoa(*f.CategoryID))
	}
	return strings.Join(params, "&")
}

func itemPath(id int) string {
	return TransactionsPath + "/" + strconv.Itoa(id)
}

func (c *TransactionClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debugw("api request failed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"error", err.Error(),
		)
		appErr := apperrors.Wrap(apperrors.ErrTransport, err)
		appErr.Message = err.Error()
		return appErr
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debugw("api request",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrDecode, err)
	}
	return nil
}

// responseError maps a non-2xx response to an AppError carrying the server's
// detail message when the body has one.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	sentinel := apperrors.ErrTransport
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = apperrors.ErrNotFound
	case http.StatusUnprocessableEntity:
		sentinel = apperrors.ErrValidationFailed
	}

	return apperrors.FromResponse(sentinel, resp.StatusCode,
		fmt.Sprintf("unexpected status %d", resp.StatusCode), parseDetail(body))
}

// parseDetail reads {"detail": "..."}. Validation responses carry a list of
// {"loc": [...], "msg": "..."} entries instead; the first msg is used.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		return detail
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
