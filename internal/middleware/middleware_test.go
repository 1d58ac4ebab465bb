package middleware

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("error.html").Parse(`{{.Status}}|{{.Message}}`)))
	r.Use(RequestLogging(), ErrorHandler("error.html"))
	r.GET("/", handler)
	return r
}

func TestRequestLogging_GeneratesID(t *testing.T) {
	var seen string
	r := newRouter(func(c *gin.Context) {
		seen = RequestID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	header := w.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("expected a uuid request id, got %q", header)
	}
	if seen != header {
		t.Errorf("expected context id %q to match header %q", seen, header)
	}
}

func TestRequestLogging_KeepsIncomingID(t *testing.T) {
	r := newRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected incoming id to be kept, got %q", got)
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found keeps detail",
			err:        fmt.Errorf("fetching transaction 4: %w", apperrors.FromResponse(apperrors.ErrNotFound, 404, "unexpected status 404", "Transaction not found")),
			wantStatus: http.StatusNotFound,
			wantBody:   "404|Transaction not found",
		},
		{
			name:       "invalid input",
			err:        apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid id"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "400|invalid id",
		},
		{
			name:       "network failure",
			err:        apperrors.WithMessage(apperrors.ErrTransport, "connection refused"),
			wantStatus: http.StatusBadGateway,
			wantBody:   "502|connection refused",
		},
		{
			name:       "upstream server error",
			err:        apperrors.FromResponse(apperrors.ErrTransport, 500, "unexpected status 500", ""),
			wantStatus: http.StatusBadGateway,
			wantBody:   "502|unexpected status 500",
		},
		{
			name:       "unexpected error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "500|" + InternalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestErrorHandler_NoErrors(t *testing.T) {
	r := newRouter(func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("expected untouched response, got %d %q", w.Code, w.Body.String())
	}
}
