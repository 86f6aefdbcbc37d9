package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ViewHandler serves aggregated views. Views never fail as a whole; missing
// partitions are marked inside the body.
type ViewHandler struct {
	facade ViewFacade
}

func NewViewHandler(facade ViewFacade) *ViewHandler {
	return &ViewHandler{facade: facade}
}

// Dashboard handles GET /api/admin/dashboard.
func (h *ViewHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.facade.Dashboard(c.Request.Context()))
}

// Home handles GET /api/home.
func (h *ViewHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, h.facade.Home(c.Request.Context()))
}
