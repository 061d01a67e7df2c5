package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/creative-task-api/internal/errors"
	"github.com/yukikurage/creative-task-api/internal/middleware"
	"github.com/yukikurage/creative-task-api/internal/services"
)

type WorkloadHandler struct {
	workload *services.WorkloadService
}

func NewWorkloadHandler(workload *services.WorkloadService) *WorkloadHandler {
	return &WorkloadHandler{workload: workload}
}

// DesignerWorkload returns the design team ranked by workload score
func (h *WorkloadHandler) DesignerWorkload(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	entries, err := h.workload.DesignerWorkload(c.Request.Context(), actor, c.Param("organizationId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"designers": entries,
	})
}

// OrganizationOverview returns ongoing and overdue totals per account manager
func (h *WorkloadHandler) OrganizationOverview(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	overview, err := h.workload.OrganizationOverview(c.Request.Context(), actor, c.Param("organizationId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
