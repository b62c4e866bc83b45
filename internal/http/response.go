package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/williamsps/maintenance-portal/internal/http/middleware"
	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/service"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

type envelope struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data"`
	Message    string            `json:"message,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

type errorEnvelope struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Details interface{}             `json:"details,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func respondPage(c *gin.Context, data interface{}, pagination model.Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &pagination})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, errorEnvelope{Message: message})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

// currentPrincipal aborts with 401 when the auth middleware did not run.
func currentPrincipal(c *gin.Context) (model.Principal, bool) {
	p, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
	}
	return p, found
}

// bind decodes the JSON body; a malformed body is a 400.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindOptional is bind for endpoints whose body may be empty.
func bindOptional(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verr *validation.Error
	var blocked *service.DeleteBlockedError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorEnvelope{Message: verr.Message, Errors: verr.Fields})
	case errors.As(err, &blocked):
		c.JSON(http.StatusConflict, errorEnvelope{Message: blocked.Message, Details: blocked.Details})
	case errors.Is(err, service.ErrInvalidInput):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition):
		fail(c, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "internal error")
	}
}
