package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/focusmetrics/internal/apierror"
	"github.com/JonnyWalker81/focusmetrics/internal/models"
	"github.com/JonnyWalker81/focusmetrics/internal/service"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// CreateActivity handles POST /api/v1/activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "Invalid JSON format"))
		return
	}

	record, err := h.activityService.RecordActivity(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}
