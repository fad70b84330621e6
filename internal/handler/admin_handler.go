package handler

import (
	"strconv"

	"github.com/asfi50/jnucsu-backend/internal/common"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/asfi50/jnucsu-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles the moderator review queue
type AdminHandler struct {
	review service.ReviewService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(review service.ReviewService) *AdminHandler {
	return &AdminHandler{review: review}
}

// ReviewQueue handles GET /admin/review-queue
// Pending items are listed oldest submission first.
func (h *AdminHandler) ReviewQueue(c *gin.Context) {
	kind := domain.ContentKind(c.Query("kind"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, err := h.review.ListPending(kind, page, limit)
	if err != nil {
		common.BusinessErrorResponse(c, err)
		return
	}

	common.SuccessResponse(c, items, &common.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}
