package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/server/http/dto"
	"github.com/polkiloo/fosgateway/internal/server/http/middleware"
)

// CurrentSession extracts the authenticated session from context.
func CurrentSession(c *gin.Context) *model.Session {
	val, ok := c.Get(middleware.SessionContextKey)
	if !ok {
		return nil
	}
	s, _ := val.(*model.Session)
	return s
}

var statusByKind = []struct {
	kind   error
	status int
	code   string
}{
	{domainErrors.ErrInvalidTransition, http.StatusUnprocessableEntity, "invalid_transition"},
	{domainErrors.ErrUnknownStatus, http.StatusUnprocessableEntity, "unknown_status"},
	{domainErrors.ErrMalformedRequest, http.StatusBadRequest, "malformed_request"},
	{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{domainErrors.ErrSessionExpired, http.StatusUnauthorized, "session_expired"},
	{domainErrors.ErrAccountLocked, http.StatusForbidden, "account_locked"},
	{domainErrors.ErrNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrRefreshInProgress, http.StatusConflict, "refresh_in_progress"},
	{domainErrors.ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
}

// writeError maps domain errors onto HTTP answers.
func writeError(c *gin.Context, err error) {
	for _, m := range statusByKind {
		if errors.Is(err, m.kind) {
			resp := dto.ErrorResponse{Error: m.code}
			var rejection *domainErrors.Rejection
			if errors.As(err, &rejection) {
				resp.Message = rejection.Reason
			}
			c.AbortWithStatusJSON(m.status, resp)
			return
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal"})
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed_request", Message: "order id must be a positive integer"})
		return 0, false
	}
	return id, true
}
