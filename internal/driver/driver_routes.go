package driver

import (
	"go-courier/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	drivers := r.Group("/drivers")
	drivers.Use(middleware.AuthMiddleware())
	drivers.Use(middleware.ContextLogger(logger))
	drivers.Use(middleware.RoleMiddleware(middleware.RoleAdmin))
	{
		drivers.GET("", middleware.RateLimitByUser(5, 20), handler.List)
		drivers.GET("/:id", middleware.RateLimitByUser(3, 10), handler.GetByID)
		drivers.GET("/:id/performance", middleware.RateLimitByUser(3, 10), handler.Performance)
		drivers.PUT("/:id", middleware.RateLimitByUser(0.5, 2), handler.Update)
		drivers.DELETE("/:id", middleware.RateLimitByUser(0.05, 1), handler.Remove)
	}

	me := r.Group("/driver")
	me.Use(middleware.AuthMiddleware())
	me.Use(middleware.ContextLogger(logger))
	me.Use(middleware.RoleMiddleware(middleware.RoleDriver))
	{
		me.GET("/profile", middleware.RateLimitByUser(3, 10), handler.GetOwnProfile)
	}
}
