// Package web serves the transactions page as server-rendered HTML.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arampall/finance-tracker/internal/logger"
	"github.com/arampall/finance-tracker/internal/middleware"
	"github.com/arampall/finance-tracker/internal/page"
)

const shutdownTimeout = 10 * time.Second

// Server renders the page held by a page controller.
type Server struct {
	page   *page.Controller
	router *gin.Engine
	log    *zap.SugaredLogger
}

// NewServer builds the router for ctrl.
func NewServer(ctrl *page.Controller) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		page: ctrl,
		log:  logger.Named("web"),
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler(errorTemplate))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/", s.index)
	router.POST("/refresh", s.refresh)
	router.POST("/filters", s.setFilters)
	router.POST("/filters/clear", s.clearFilters)
	router.POST("/error/dismiss", s.dismissError)

	router.POST("/form", s.submitForm)
	router.POST("/form/cancel", s.cancelForm)

	transactions := router.Group("/transactions")
	transactions.GET("/new", s.newTransaction)
	transactions.GET("/:id/edit", s.editTransaction)
	transactions.GET("/:id/delete", s.confirmDelete)
	transactions.POST("/:id/delete", s.deleteTransaction)

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Starting finance tracker web server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
