package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mparedes/cuestionario-api/config"
	"github.com/mparedes/cuestionario-api/database"
	_ "github.com/mparedes/cuestionario-api/docs" // Swagger docs - auto-generated
	adminctrl "github.com/mparedes/cuestionario-api/internal/controller/admin"
	consumerctrl "github.com/mparedes/cuestionario-api/internal/controller/consumer"
	userctrl "github.com/mparedes/cuestionario-api/internal/controller/user"
	"github.com/mparedes/cuestionario-api/internal/logger"
	"github.com/mparedes/cuestionario-api/internal/middleware"
	"github.com/mparedes/cuestionario-api/internal/model"
	"github.com/mparedes/cuestionario-api/internal/repository"
	"github.com/mparedes/cuestionario-api/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Cuestionario API
// @version 1.0
// @description Single-use token lifecycle, questionnaire sessions and response export for the cuestionario platform.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewTokenRepository,
			repository.NewCuestionarioRepository,
			repository.NewResponseRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewTokenService,
			service.NewCuestionarioService,
			service.NewResponseService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewTokenController,
			adminctrl.NewCuestionarioController,
			adminctrl.NewResponseController,
			userctrl.NewSessionController,
			consumerctrl.NewExportController,
			middleware.NewAPIKeyGuard,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	r := gin.New()

	// Request logging through Zerolog instead of Gin's default logger.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	// CORS Configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "x-api-key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI
	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	tokenCtrl *adminctrl.TokenController,
	cuestionarioCtrl *adminctrl.CuestionarioController,
	responseCtrl *adminctrl.ResponseController,
	sessionCtrl *userctrl.SessionController,
	exportCtrl *consumerctrl.ExportController,
	apiKeyGuard *middleware.APIKeyGuard,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		tokensGroup := adminAPIGroup.Group("/tokens")
		tokensGroup.POST("", tokenCtrl.CreateToken)
		tokensGroup.POST("/batch", tokenCtrl.CreateTokenBatch)
		tokensGroup.GET("", tokenCtrl.ListTokens)
		tokensGroup.POST("/:token_id/revoke", tokenCtrl.RevokeToken)

		cuestionariosGroup := adminAPIGroup.Group("/cuestionarios")
		cuestionariosGroup.POST("", cuestionarioCtrl.CreateCuestionario)
		cuestionariosGroup.GET("", cuestionarioCtrl.ListCuestionarios)
		cuestionariosGroup.GET("/:cuestionario_id", cuestionarioCtrl.GetCuestionario)
		cuestionariosGroup.PUT("/:cuestionario_id/status", cuestionarioCtrl.UpdateCuestionarioStatus)
		cuestionariosGroup.DELETE("/:cuestionario_id", cuestionarioCtrl.DeleteCuestionario)

		responsesGroup := adminAPIGroup.Group("/responses")
		responsesGroup.GET("", responseCtrl.ListResponses)
		responsesGroup.GET("/:response_id", responseCtrl.GetResponse)
	}

	// Public Session Routes (prefixed with /api/v1)
	publicAPIGroup := router.Group("/api/v1")
	{
		publicAPIGroup.GET("/tokens/:token_id/validate", sessionCtrl.ValidateToken)
		publicAPIGroup.GET("/cuestionarios/active", sessionCtrl.GetActiveCuestionario)
		publicAPIGroup.POST("/tokens/:token_id/responses", sessionCtrl.SubmitResponse)
		publicAPIGroup.POST("/tokens/:token_id/abandon", sessionCtrl.AbandonResponse)
		publicAPIGroup.POST("/responses/:response_id/feedback", sessionCtrl.SubmitFeedback)
		publicAPIGroup.POST("/responses/:response_id/abandon-feedback", sessionCtrl.SubmitAbandonFeedback)
	}

	// Consumer Export Routes (prefixed with /api/v1/export, API-key gated).
	// The health check stays outside the guard so monitors need no secret.
	router.GET("/api/v1/export/health", exportCtrl.Health)
	exportAPIGroup := router.Group("/api/v1/export")
	exportAPIGroup.Use(apiKeyGuard.Middleware())
	{
		exportAPIGroup.GET("/responses/pending", exportCtrl.ListPending)
		exportAPIGroup.GET("/responses/all", exportCtrl.ListAll)
		exportAPIGroup.GET("/responses/:response_id/download", exportCtrl.Download)
		exportAPIGroup.POST("/responses/:response_id/unmark", exportCtrl.Unmark)
	}

	// HTTP Server Setup and Lifecycle
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Cuestionario API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Token{},
		&model.Cuestionario{},
		&model.Response{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
