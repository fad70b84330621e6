package routes

import (
	"github.com/asfi50/jnucsu-backend/internal/handler"
	"github.com/asfi50/jnucsu-backend/internal/middleware"
	"github.com/asfi50/jnucsu-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	moderationHandler *handler.ModerationHandler,
	engagementHandler *handler.EngagementHandler,
	adminHandler *handler.AdminHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1")

	// Content moderation lifecycle (authors)
	moderation := api.Group("/moderation", middleware.JWTAuth(jwtManager))
	items := moderation.Group("/items")
	{
		items.POST("", moderationHandler.CreateItem)
		items.PUT("/:id/draft", moderationHandler.UpdateDraft)
		items.POST("/:id/submit", moderationHandler.Submit)
		items.POST("/:id/withdraw", moderationHandler.Withdraw)
		items.POST("/:id/resubmit", moderationHandler.Resubmit)
		items.POST("/:id/convert-to-draft", moderationHandler.ConvertToDraft)
		items.DELETE("/:id", moderationHandler.DeleteDraft)
		items.GET("/:id/history", moderationHandler.History)

		// Moderator-only
		items.POST("/:id/decision", middleware.RequireModerator(), moderationHandler.Decide)
		items.GET("/:id/decisions", middleware.RequireModerator(), moderationHandler.Decisions)
	}

	// Engagement (votes / reactions)
	engagement := api.Group("/engagement")
	engagement.POST("/toggle", middleware.JWTAuth(jwtManager), engagementHandler.Toggle)
	engagement.GET("/status", middleware.OptionalJWTAuth(jwtManager), engagementHandler.Status)

	// Admin review queue
	admin := api.Group("/admin", middleware.JWTAuth(jwtManager), middleware.RequireModerator())
	admin.GET("/review-queue", adminHandler.ReviewQueue)
}
