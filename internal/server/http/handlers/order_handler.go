package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fosgateway/internal/server/http/dto"
)

// OrderHandler manages order lookups and status changes.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// NextAction handles GET /api/orders/:id/next-action.
func (h *OrderHandler) NextAction(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, action, err := h.facade.NextAction(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewNextActionResponse(order, action))
}

// UpdateStatus handles PUT /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req dto.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed_request", Message: "invalid JSON body"})
		return
	}

	order, err := h.facade.RequestStatusChange(c.Request.Context(), CurrentSession(c), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
