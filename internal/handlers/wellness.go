package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/focusmetrics/internal/apierror"
	"github.com/JonnyWalker81/focusmetrics/internal/models"
	"github.com/JonnyWalker81/focusmetrics/internal/service"
)

type WellnessHandler struct {
	wellnessService service.WellnessService
}

// NewWellnessHandler creates a new wellness handler
func NewWellnessHandler(wellnessService service.WellnessService) *WellnessHandler {
	return &WellnessHandler{
		wellnessService: wellnessService,
	}
}

// LogWellness handles PUT /api/v1/wellness
func (h *WellnessHandler) LogWellness(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.LogWellnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "Invalid JSON format"))
		return
	}

	record, err := h.wellnessService.LogWellness(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}
