package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/focusmetrics/internal/service"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetMetrics handles GET /api/v1/analytics/metrics
func (h *AnalyticsHandler) GetMetrics(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	metrics, err := h.analyticsService.GetProductivityMetrics(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetTrends handles GET /api/v1/analytics/trends?period=day|week|month.
// Unknown periods fall back to week.
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	trends, err := h.analyticsService.GetTrends(c.Request.Context(), userID, c.DefaultQuery("period", "week"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, trends)
}

// GetSleepCorrelation handles GET /api/v1/analytics/correlations/sleep
func (h *AnalyticsHandler) GetSleepCorrelation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.analyticsService.GetSleepCorrelation(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPerformanceWindows handles GET /api/v1/analytics/performance-windows
func (h *AnalyticsHandler) GetPerformanceWindows(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	windows, err := h.analyticsService.GetPerformanceWindows(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, windows)
}
