package handler

import (
	"net/http"

	"github.com/asfi50/jnucsu-backend/internal/common"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/asfi50/jnucsu-backend/internal/middleware"
	"github.com/asfi50/jnucsu-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// EngagementHandler handles vote/reaction HTTP requests
type EngagementHandler struct {
	service service.EngagementService
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(service service.EngagementService) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// Toggle handles POST /engagement/toggle
func (h *EngagementHandler) Toggle(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Login required", nil)
		return
	}

	var req domain.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), userID, req)
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	middleware.CountToggle(string(req.TargetType), string(req.EngagementType))
	common.SuccessResponse(c, result, nil)
}

// Status handles GET /engagement/status
func (h *EngagementHandler) Status(c *gin.Context) {
	targetID := c.Query("target_id")
	if targetID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "target_id is required", nil)
		return
	}
	targetType := domain.TargetType(c.Query("target_type"))
	engagementType := domain.EngagementType(c.Query("engagement_type"))

	result, err := h.service.Status(c.Request.Context(), middleware.GetUserID(c), targetID, targetType, engagementType)
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}
