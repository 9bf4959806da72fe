package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	"github.com/murdhanno/backend/internal/interfaces/http/dto"
	"github.com/murdhanno/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler is embedded by every handler for the response envelope helpers
type BaseHandler struct{}

func (h *BaseHandler) Success(c *gin.Context, data any) { c.JSON(http.StatusOK, dto.NewSuccessResponse(data)) }
func (h *BaseHandler) Created(c *gin.Context, data any) { c.JSON(http.StatusCreated, dto.NewSuccessResponse(data)) }

// Error answers with the envelope and the caller's request id
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError answers a failed ShouldBind with per-field details
func (h *BaseHandler) BindError(c *gin.Context, err error) { middleware.HandleValidationError(c, err) }

// reply answers with data, or with err when it is set
func (h *BaseHandler) reply(c *gin.Context, data any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// bindJSON decodes the body into a T and answers 400 itself on failure
func bindJSON[T any](h *BaseHandler, c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return req, false
	}
	return req, true
}

// HandleError maps a domain error to its status and code. Any other error is
// logged and answered with a generic 500 so internals never leak.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var de *shared.DomainError
	switch {
	case err == nil:
	case errors.As(err, &de):
		code := dto.NormalizeErrorCode(de.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, de.Message)
	default:
		logger.L(c.Request.Context()).Error("Unhandled request error",
			zap.String("path", c.FullPath()), zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
}

// actor answers 401 itself when the claims are missing or malformed
func (h *BaseHandler) actor(c *gin.Context) (shared.Actor, bool) {
	a, err := middleware.GetActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return shared.Actor{}, false
	}
	return a, true
}

func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// Paginated answers with a page of items and its meta block
func Paginated[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}
