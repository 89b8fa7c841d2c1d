package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/adapters/event"
	httpAdapter "github.com/filipposta/legacy-premium-api/adapters/http"
	"github.com/filipposta/legacy-premium-api/adapters/media_storage"
	"github.com/filipposta/legacy-premium-api/adapters/persistence"
	"github.com/filipposta/legacy-premium-api/internal/application/service"
	authUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/auth"
	profileUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/profile"
	settingsUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/settings"
	viewsUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/views"
	"github.com/filipposta/legacy-premium-api/internal/config"
	"github.com/filipposta/legacy-premium-api/internal/identity"
	"github.com/filipposta/legacy-premium-api/pkg/auth"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
	"github.com/filipposta/legacy-premium-api/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting Legacy Premium API Server...")

	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "legacy-premium-api")
		if err != nil {
			appLogger.Fatal("cannot init tracer", err)
		}
		defer tp.Shutdown(context.Background())
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Storage
	store, err := persistence.NewPostgresDocStore(dbPool, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init document store", err)
	}
	userRepo := persistence.NewDocUserRepo(store)
	settingsRepo := persistence.NewDocSettingsRepo(store)
	viewRepo := persistence.NewDocViewRepo(store)
	tokenStore := persistence.NewRedisTokenStore(redisClient, cfg.Auth.ResetTokenLifespan)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	sessions := identity.NewSessions()
	defer sessions.Subscribe(func(ev identity.SessionEvent) {
		appLogger.Info("session change",
			zap.String("type", ev.Type), zap.String("user_id", ev.UserID))
	})()

	var uploader service.Uploader
	if cfg.Cloudinary.CloudName != "" {
		uploader, err = media_storage.NewCloudinaryAdapter(cfg)
		if err != nil {
			appLogger.Fatal("cannot init media storage", err)
		}
	}

	// Use Cases
	registerUseCase := authUC.NewRegisterUseCase(userRepo, settingsRepo, jwtSvc, kafkaClient, sessions, appLogger)
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, tokenStore, sessions, cfg.Auth.MaxSignInAttempts, appLogger)
	logoutUseCase := authUC.NewLogoutUseCase(tokenStore, sessions, appLogger)
	resetUseCase := authUC.NewResetPasswordUseCase(userRepo, tokenStore, kafkaClient, appLogger)
	deleteUseCase := authUC.NewDeleteAccountUseCase(userRepo, settingsRepo, tokenStore, kafkaClient, sessions, appLogger)

	profileUseCase := profileUC.NewProfileUseCase(userRepo, uploader, appLogger)
	settingsUseCase := settingsUC.NewSettingsUseCase(settingsRepo, userRepo, appLogger)

	reconcileUseCase := viewsUC.NewReconcileUseCase(viewRepo, userRepo, appLogger)
	cleanUseCase := viewsUC.NewCleanUseCase(viewRepo, userRepo, reconcileUseCase, appLogger)
	logViewUseCase := viewsUC.NewLogViewUseCase(viewRepo, kafkaClient, appLogger)

	// HTTP Handlers
	authHandler := httpAdapter.NewAuthHandler(registerUseCase, loginUseCase, logoutUseCase, resetUseCase, deleteUseCase)
	profileHandler := httpAdapter.NewProfileHandler(profileUseCase, logViewUseCase, appLogger)
	settingsHandler := httpAdapter.NewSettingsHandler(settingsUseCase)
	viewsHandler := httpAdapter.NewViewsHandler(reconcileUseCase, cleanUseCase)

	// Middleware
	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc, tokenStore, appLogger)
	optionalAuth := httpAdapter.OptionalAuthMiddleware(jwtSvc, tokenStore, appLogger)
	errorMiddleware := httpAdapter.ErrorMiddleware(appLogger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), errorMiddleware, httpAdapter.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "UP"}) })
	router.GET("/metrics", httpAdapter.MetricsHandler())

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/password-reset", authHandler.RequestPasswordReset)
			authGroup.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)

			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
			authGroup.DELETE("/account", authMiddleware, authHandler.DeleteAccount)
		}

		api.GET("/users/:id", optionalAuth, profileHandler.GetUser)

		private := api.Group("/")
		private.Use(authMiddleware)
		{
			private.GET("/users/me", profileHandler.GetMe)
			private.PUT("/users/me", profileHandler.UpdateMe)
			private.POST("/users/me/avatar", profileHandler.UploadAvatar)

			private.GET("/settings", settingsHandler.GetSettings)
			private.PUT("/settings", settingsHandler.UpdateSettings)

			private.GET("/profile-views", viewsHandler.ListProfileViews)
			private.POST("/profile-views/clean", viewsHandler.CleanProfileViews)
		}
	}

	appLogger.Info("Server running", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		appLogger.Fatal("Cannot run server", err)
	}
}
