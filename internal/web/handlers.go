package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
	"github.com/arampall/finance-tracker/internal/filters"
	"github.com/arampall/finance-tracker/internal/form"
	"github.com/arampall/finance-tracker/internal/page"
)

var formFields = []string{
	form.FieldAmount,
	form.FieldType,
	form.FieldTransactionDate,
	form.FieldDescription,
	form.FieldCategoryID,
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, newIndexView(s.page.Snapshot(), s.page.HasActiveFilters()))
}

// backToIndex sends the browser back to the page after a state change.
func backToIndex(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// fail reports err unless it is already shown on the page. Transport failures
// of list and delete calls land in the page error banner.
func fail(c *gin.Context, err error) bool {
	if err == nil || apperrors.IsTransport(err) {
		return false
	}
	_ = c.Error(err)
	return true
}

func (s *Server) refresh(c *gin.Context) {
	_ = s.page.Refresh(c.Request.Context())
	backToIndex(c)
}

func (s *Server) setFilters(c *gin.Context) {
	var criteria filters.Criteria
	if err := c.ShouldBind(&criteria); err != nil {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if fail(c, s.page.SetFilters(c.Request.Context(), criteria)) {
		return
	}
	backToIndex(c)
}

func (s *Server) clearFilters(c *gin.Context) {
	_ = s.page.ClearFilters(c.Request.Context())
	backToIndex(c)
}

func (s *Server) dismissError(c *gin.Context) {
	s.page.DismissError()
	backToIndex(c)
}

func (s *Server) newTransaction(c *gin.Context) {
	s.page.OpenCreate()
	backToIndex(c)
}

func (s *Server) editTransaction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.page.OpenEditByID(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	backToIndex(c)
}

// submitForm copies the posted fields into the draft and submits it. Save
// failures stay in the form, so only a form that is not open is an error.
func (s *Server) submitForm(c *gin.Context) {
	for _, name := range formFields {
		value, ok := c.GetPostForm(name)
		if !ok {
			continue
		}
		if err := s.page.SetFormField(name, value); err != nil {
			_ = c.Error(err)
			return
		}
	}

	if err := s.page.SubmitForm(c.Request.Context()); err != nil && !s.page.Snapshot().FormVisible {
		_ = c.Error(err)
		return
	}
	backToIndex(c)
}

func (s *Server) cancelForm(c *gin.Context) {
	s.page.CloseForm()
	backToIndex(c)
}

func (s *Server) confirmDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view := confirmView{ID: id}
	if tx, found := s.page.Find(id); found {
		item := newItemView(tx)
		view.Item = &item
	}
	c.HTML(http.StatusOK, confirmTemplate, view)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	confirmed := page.ConfirmFunc(func(_ context.Context, _ int) (bool, error) {
		return c.PostForm("confirm") == "yes", nil
	})
	if fail(c, s.page.Delete(c.Request.Context(), id, confirmed)) {
		return
	}
	backToIndex(c)
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid transaction ID"))
		return 0, false
	}
	return id, true
}
