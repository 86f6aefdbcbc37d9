package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fosgateway/internal/server/http/dto"
)

// HealthHandler reports backing service health and gateway liveness.
type HealthHandler struct {
	facade HealthFacade
}

func NewHealthHandler(facade HealthFacade) *HealthHandler {
	return &HealthHandler{facade: facade}
}

// Snapshot handles GET /api/health. Before the first poll completes the
// answer is 503.
func (h *HealthHandler) Snapshot(c *gin.Context) {
	snap, ok := h.facade.Health()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "health_unknown", Message: "no health check has completed yet"})
		return
	}
	c.JSON(http.StatusOK, dto.NewHealthResponse(snap))
}

// Refresh handles POST /api/health/refresh.
func (h *HealthHandler) Refresh(c *gin.Context) {
	snap, err := h.facade.RefreshHealth(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewHealthResponse(snap))
}

// Liveness handles GET /healthz.
func Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
