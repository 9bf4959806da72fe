package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/interfaces/http/dto"
	"github.com/murdhanno/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	h := &BaseHandler{}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/err", func(c *gin.Context) {
		h.HandleError(c, err)
	})
	req := httptest.NewRequest(http.MethodGet, "/err", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-base")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.NewDomainError("FORBIDDEN", "Access denied")), http.StatusForbidden, dto.ErrCodeForbidden},
		{"invalid paper size", shared.NewDomainError("INVALID_PAPER_SIZE", "bad paper"), http.StatusBadRequest, dto.ErrCodeInvalidPaperSize},
		{"pdf not ready", shared.NewDomainError("PDF_NOT_READY", "later"), http.StatusConflict, dto.ErrCodePDFNotReady},
		{"empty order", shared.NewDomainError("EMPTY_ORDER", "no items"), http.StatusUnprocessableEntity, dto.ErrCodeEmptyOrder},
		{"plain error", errors.New("disk full"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, tt.wantCode, errInfo.Code)
			assert.Equal(t, "req-base", errInfo.RequestID)
		})
	}

	t.Run("internal errors hide the cause", func(t *testing.T) {
		w := serveError(t, errors.New("disk full"))
		assert.NotContains(t, w.Body.String(), "disk full")
	})
}

func TestBaseHandler_ActorWithoutClaims(t *testing.T) {
	h := &BaseHandler{}
	engine := gin.New()
	engine.GET("/me", func(c *gin.Context) {
		if _, ok := h.actor(c); !ok {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decodeError(t, w).Code)
}
