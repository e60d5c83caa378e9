package v1

import (
	"github.com/clearhaven/claimdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashSvc *service.DashboardService
}

func NewDashboardHandler(dashSvc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashSvc: dashSvc}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.dashSvc.Build(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, dashboard)
}
