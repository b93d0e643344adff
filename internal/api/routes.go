package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"daylog/internal/api/middleware"
	"daylog/internal/auth"
	"daylog/internal/daylog"
	"daylog/internal/storage"
	"daylog/internal/template"
)

// RegisterRoutes wires every handler under /v1.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	store storage.Store,
	allowedOrigins []string,
	clamdAddr string,
) {
	dayService := daylog.NewService(db)
	templateEngine := template.NewEngine(db)

	authHandler := NewAuthHandler(db, authService, redisClient, logger)
	accountHandler := NewAccountHandler(db, store, logger, clamdAddr)
	dayHandler := NewDayHandler(dayService)
	templateHandler := NewTemplateHandler(templateEngine)
	reportHandler := NewReportHandler(db, asynqClient, store)
	wsHandler := NewWsHandler(redisClient, authService, logger, allowedOrigins)
	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
		}

		accountGroup := v1.Group("/account")
		accountGroup.Use(authMiddleware)
		{
			accountGroup.GET("", accountHandler.GetAccount)
			accountGroup.PUT("", accountHandler.UpdateAccount)
			accountGroup.POST("/avatar", accountHandler.UploadAvatar)
			accountGroup.GET("/responsibilities", accountHandler.GetResponsibilities)
			accountGroup.PUT("/responsibilities", accountHandler.UpdateResponsibilities)
		}

		dayGroup := v1.Group("/days")
		dayGroup.Use(authMiddleware)
		{
			dayGroup.GET("", dayHandler.ListDays)
			dayGroup.GET("/:date", dayHandler.GetDay)
			dayGroup.PUT("/:date", dayHandler.SaveDay)
			dayGroup.DELETE("/:date", dayHandler.DeleteDay)
		}

		templateGroup := v1.Group("/templates")
		templateGroup.Use(authMiddleware)
		{
			templateGroup.POST("/:kind", templateHandler.CreateTemplate)
			templateGroup.GET("/:kind", templateHandler.ListTemplates)
			templateGroup.GET("/:kind/:id/apply", templateHandler.ApplyTemplate)
			templateGroup.POST("/:kind/delete", templateHandler.DeleteTemplates)
		}

		reportGroup := v1.Group("/reports")
		reportGroup.Use(authMiddleware)
		{
			reportGroup.POST("", reportHandler.CreateReport)
			reportGroup.GET("", reportHandler.ListReports)
			reportGroup.GET("/:id/download", reportHandler.DownloadReport)
		}
	}
}
