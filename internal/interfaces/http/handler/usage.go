package handler

import (
	"context"

	billingapp "github.com/bizhub/backend/internal/application/billing"
	reportapp "github.com/bizhub/backend/internal/application/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UsageReporter is the read side of billingapp.UsageService
type UsageReporter interface {
	Report(ctx context.Context, userID uuid.UUID) (*billingapp.UsageReportResponse, error)
	Check(ctx context.Context, userID uuid.UUID, resource string) (*billingapp.ResourceUsageResponse, error)
}

// UsageHandler reports plan usage
type UsageHandler struct {
	BaseHandler
	usageService UsageReporter
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(usageService UsageReporter) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// Report handles GET /usage
func (h *UsageHandler) Report(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	report, err := h.usageService.Report(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Check handles GET /usage/:resource/check
func (h *UsageHandler) Check(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	usage, err := h.usageService.Check(c.Request.Context(), userID, c.Param("resource"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, usage)
}

// DashboardService builds the dashboard summary
type DashboardService interface {
	Summary(ctx context.Context, userID uuid.UUID) (*reportapp.SummaryResponse, error)
}

// DashboardHandler serves the dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary handles GET /dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	summary, err := h.dashboardService.Summary(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
