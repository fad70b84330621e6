package handler

import (
	"net/http"

	"github.com/asfi50/jnucsu-backend/internal/common"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/asfi50/jnucsu-backend/internal/middleware"
	"github.com/asfi50/jnucsu-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ModerationHandler handles content lifecycle HTTP requests
type ModerationHandler struct {
	service service.ModerationService
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(service service.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{ID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

// CreateItem handles POST /moderation/items
func (h *ModerationHandler) CreateItem(c *gin.Context) {
	var req domain.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.service.CreateDraft(actorFrom(c), req.Kind, req.Payload)
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.APIResponse{Data: item})
}

// UpdateDraft handles PUT /moderation/items/:id/draft
func (h *ModerationHandler) UpdateDraft(c *gin.Context) {
	var req domain.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.service.UpdateDraft(c.Param("id"), actorFrom(c), req.Payload)
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, item, nil)
}

// Submit handles POST /moderation/items/:id/submit
func (h *ModerationHandler) Submit(c *gin.Context) {
	result, err := h.service.Submit(c.Param("id"), actorFrom(c))
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	middleware.CountTransition("submit")
	common.SuccessResponse(c, result, nil)
}

// Withdraw handles POST /moderation/items/:id/withdraw
func (h *ModerationHandler) Withdraw(c *gin.Context) {
	result, err := h.service.Withdraw(c.Param("id"), actorFrom(c))
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	middleware.CountTransition("withdraw")
	common.SuccessResponse(c, result, nil)
}

// Decide handles POST /moderation/items/:id/decision
func (h *ModerationHandler) Decide(c *gin.Context) {
	var req domain.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	switch req.Decision {
	case domain.DecisionApprove:
		result, err := h.service.Approve(c.Param("id"), actorFrom(c))
		if err != nil {
			common.BusinessErrorResponse(c, err)
			return
		}
		middleware.CountTransition("approve")
		common.SuccessResponse(c, result, nil)
	case domain.DecisionReject:
		result, err := h.service.Reject(c.Param("id"), actorFrom(c), req.Reason)
		if err != nil {
			common.BusinessErrorResponse(c, err)
			return
		}
		middleware.CountTransition("reject")
		common.SuccessResponse(c, result, nil)
	default:
		common.ErrorResponse(c, http.StatusBadRequest, "Decision must be approve or reject", nil)
	}
}

// Resubmit handles POST /moderation/items/:id/resubmit
func (h *ModerationHandler) Resubmit(c *gin.Context) {
	result, err := h.service.Resubmit(c.Param("id"), actorFrom(c))
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	middleware.CountTransition("resubmit")
	common.SuccessResponse(c, result, nil)
}

// ConvertToDraft handles POST /moderation/items/:id/convert-to-draft
func (h *ModerationHandler) ConvertToDraft(c *gin.Context) {
	result, err := h.service.ConvertToDraft(c.Param("id"), actorFrom(c))
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	middleware.CountTransition("convert_to_draft")
	common.SuccessResponse(c, result, nil)
}

// DeleteDraft handles DELETE /moderation/items/:id
func (h *ModerationHandler) DeleteDraft(c *gin.Context) {
	if err := h.service.DeleteDraft(c.Param("id"), actorFrom(c)); err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// History handles GET /moderation/items/:id/history
func (h *ModerationHandler) History(c *gin.Context) {
	result, err := h.service.History(c.Param("id"))
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Decisions handles GET /moderation/items/:id/decisions
func (h *ModerationHandler) Decisions(c *gin.Context) {
	result, err := h.service.Decisions(c.Param("id"))
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, result, nil)
}
