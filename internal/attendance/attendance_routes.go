package attendance

import (
	"go-courier/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	me := r.Group("/driver")
	me.Use(middleware.AuthMiddleware())
	me.Use(middleware.ContextLogger(logger))
	me.Use(middleware.RoleMiddleware(middleware.RoleDriver))
	{
		me.POST("/attendance", middleware.RateLimitByUser(0.5, 3), handler.Mark)
		me.GET("/attendance", middleware.RateLimitByUser(3, 10), handler.ListOwn)
	}

	admin := r.Group("/drivers")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.ContextLogger(logger))
	admin.Use(middleware.RoleMiddleware(middleware.RoleAdmin))
	{
		admin.GET("/:id/attendance", middleware.RateLimitByUser(3, 10), handler.ListForAdmin)
	}
}
