package delivery

import (
	"go-courier/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	deliveries := r.Group("/deliveries")
	deliveries.Use(middleware.AuthMiddleware())
	deliveries.Use(middleware.ContextLogger(logger))
	deliveries.Use(middleware.RoleMiddleware(middleware.RoleAdmin))
	{
		deliveries.GET("", middleware.RateLimitByUser(5, 20), handler.List)
		deliveries.POST("", middleware.RateLimitByUser(1, 5), handler.Create)
		deliveries.POST("/bulk-upload", middleware.RateLimitByUser(0.1, 1), handler.BulkUpload)
		deliveries.GET("/:id/eligible-drivers", middleware.RateLimitByUser(3, 10), handler.EligibleDrivers)
		deliveries.POST("/:id/assign", middleware.RateLimitByUser(1, 5), handler.Assign)
	}

	me := r.Group("/driver")
	me.Use(middleware.AuthMiddleware())
	me.Use(middleware.ContextLogger(logger))
	me.Use(middleware.RoleMiddleware(middleware.RoleDriver))
	{
		me.GET("/deliveries/today", middleware.RateLimitByUser(3, 10), handler.ListToday)
		me.PATCH("/deliveries/:id/status", middleware.RateLimitByUser(2, 5), handler.UpdateStatus)
	}
}
