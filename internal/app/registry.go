package app

import (
	"database/sql"

	"go-courier/internal/attendance"
	"go-courier/internal/auth"
	"go-courier/internal/delivery"
	"go-courier/internal/driver"
	"go-courier/internal/messaging/kafka"
	"go-courier/internal/middleware"
	"go-courier/internal/salary"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	router.Use(middleware.RequestID())

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	driverRepo := driver.NewRepository(gormDB)
	deliveryRepo := delivery.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	salaryRepo := salary.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	authService := auth.NewServiceWithOutbox(db, authRepo, driverRepo, outboxRepo)
	driverService := driver.NewServiceWithOutbox(db, driverRepo, outboxRepo, rdb)
	deliveryService := delivery.NewService(db, deliveryRepo, rdb)
	attendanceService := attendance.NewService(db, attendanceRepo, driverRepo)
	salaryService := salary.NewServiceWithOutbox(db, salaryRepo, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	driverHandler := driver.NewHandler(driverService)
	deliveryHandler := delivery.NewHandler(deliveryService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	salaryHandler := salary.NewHandlerWithRedis(salaryService, rdb)

	// --- Routes ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		driver.RegisterRoutes(api, driverHandler, logger)
		delivery.RegisterRoutes(api, deliveryHandler, logger)
		attendance.RegisterRoutes(api, attendanceHandler, logger)
		salary.RegisterRoutes(api, salaryHandler, rdb)
	}

	return nil
}
