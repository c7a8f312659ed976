package handlers

import "github.com/gin-gonic/gin"

// Register mounts the authenticated API routes on group
func Register(group *gin.RouterGroup, activity *ActivityHandler, wellness *WellnessHandler, analytics *AnalyticsHandler) {
	group.POST("/activities", activity.CreateActivity)
	group.PUT("/wellness", wellness.LogWellness)

	group.GET("/analytics/metrics", analytics.GetMetrics)
	group.GET("/analytics/trends", analytics.GetTrends)
	group.GET("/analytics/correlations/sleep", analytics.GetSleepCorrelation)
	group.GET("/analytics/performance-windows", analytics.GetPerformanceWindows)
}
