// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"compliancehub-service/internal/config"
	"compliancehub-service/internal/db"
	adminHandler "compliancehub-service/internal/handlers/admin"
	authHandler "compliancehub-service/internal/handlers/auth"
	complianceHandler "compliancehub-service/internal/handlers/compliance"
	wsHandler "compliancehub-service/internal/handlers/websocket"
	"compliancehub-service/internal/identity"
	"compliancehub-service/internal/middleware"
	"compliancehub-service/internal/pkg/jwt"
	"compliancehub-service/internal/pkg/session"
	"compliancehub-service/internal/repository/postgres"
	authUsecase "compliancehub-service/internal/service/auth"
	complianceUsecase "compliancehub-service/internal/service/compliance"
	"compliancehub-service/internal/service/email"
	"compliancehub-service/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	return &Server{
		cfg:    config.Load(),
		engine: gin.New(),
	}
}

func (s *Server) Start(ctx context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.NewPostgresPool(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session bookkeeping -----
	tracker := session.NewTracker(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)
	cookies := session.NewCookieWriter(s.cfg.CookieSecure)

	// ----- Email -----
	emailSender := email.NewEmailSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)

	// ----- Repositories -----
	accountRepo := postgres.NewAccountRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	requirementRepo := postgres.NewRequirementRepository(pool)
	testCaseRepo := postgres.NewTestCaseRepository(pool)

	// ----- Identity provider -----
	provider := identity.NewLocalProvider(accountRepo, jwtManager, emailSender, s.cfg.BaseURL, logger)
	google := identity.NewGoogleAuthenticator(ctx, s.cfg.Google, logger)

	// ----- WebSocket hub -----
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	authService := authUsecase.NewAuthService(
		provider,
		google,
		tracker,
		rateLimiter,
		hub,
		&authUsecase.LogNotifier{Logger: logger},
		authUsecase.Config{MaskResetEnumeration: s.cfg.MaskResetEnumeration},
		logger,
	)
	complianceService := complianceUsecase.NewComplianceService(
		projectRepo,
		requirementRepo,
		testCaseRepo,
		logger,
	)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:       authHandler.NewAuthHandler(authService, cookies, s.cfg.DashboardURL, logger),
		ComplianceHandler: complianceHandler.NewComplianceHandler(complianceService, logger),
		AdminHandler:      adminHandler.NewAdminHandler(accountRepo, tracker, logger),
		WSHandler:         wsHandler.NewWebSocketHandler(hub, s.cfg.DashboardOrigin, logger),
		AuthMiddleware:    middleware.NewAuthMiddleware(jwtManager.Verifier, logger),
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.DashboardOrigin),
	)

	SetupRouter(s.engine, handlers)

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}
