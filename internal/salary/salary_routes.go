package salary

import (
	"go-courier/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	admin := r.Group("/salary")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(middleware.RoleAdmin))
	{
		admin.GET("/breakdown/:driverId", handler.GetBreakdown)
		admin.GET("/total/:driverId", handler.GetUnpaidTotal)
		admin.GET("/payouts/:driverId", handler.GetPayouts)
		admin.GET("/export/:driverId", handler.Export)
		admin.POST("/adjust", handler.Adjust)
		if redisClient != nil {
			admin.POST("/mark-paid/:driverId", middleware.Idempotency(redisClient), handler.MarkPaid)
		} else {
			admin.POST("/mark-paid/:driverId", handler.MarkPaid)
		}
	}

	driver := r.Group("/driver")
	driver.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(middleware.RoleDriver))
	{
		driver.GET("/salary-breakdown", handler.GetOwnBreakdown)
		driver.GET("/payouts", handler.GetOwnPayouts)
	}
}
