package app

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hmpsicoterapia/prontuario-api/internal/adapter/database"
	"github.com/hmpsicoterapia/prontuario-api/internal/adapter/http"
	"github.com/hmpsicoterapia/prontuario-api/internal/app/auth"
	"github.com/hmpsicoterapia/prontuario-api/internal/app/prontuario"
	"github.com/hmpsicoterapia/prontuario-api/internal/infra/metrics"
	"github.com/hmpsicoterapia/prontuario-api/internal/infra/middleware"
	"github.com/hmpsicoterapia/prontuario-api/pkg/cache"
	"github.com/hmpsicoterapia/prontuario-api/pkg/config"
	"github.com/hmpsicoterapia/prontuario-api/pkg/ratelimit"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type App struct {
	Logger            *zap.Logger
	Config            *config.Config
	DB                *database.Database
	Cache             cache.Cache
	Registry          *prometheus.Registry
	APIMetrics        *metrics.APIMetrics
	AuthService       *auth.Service
	ProntuarioService *prontuario.Service
	Middleware        *middleware.Middleware
	AdminHandler      *http.AdminHandler
	ProntuarioHandler *http.ProntuarioHandler
	HealthChecker     *http.HealthChecker

	redisClient *redis.Client
}

// NewApp cria uma nova instância da aplicação com todas as dependências injetadas
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDatabase(ctx, database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
		SlowThreshold:   cfg.Database.SlowThreshold,
		MigrationDir:    cfg.Database.MigrationDir,
		SkipMigrations:  cfg.Database.SkipMigrations,
	}, logger)
	if err != nil {
		return nil, err
	}

	// registry próprio para não colidir entre instâncias
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	apiMetrics := metrics.NewAPIMetrics(registry)

	a := &App{
		Logger:     logger,
		Config:     cfg,
		DB:         db,
		Registry:   registry,
		APIMetrics: apiMetrics,
	}

	var limiter ratelimit.Limiter
	switch cfg.Cache.Type {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Cache.Redis, logger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("erro ao conectar ao Redis: %w", err)
		}
		a.redisClient = client
		a.Cache = cache.NewRedisCache(client, logger)
		limiter = ratelimit.NewRedisLimiter(client, logger)
	default:
		a.Cache = cache.NewMemoryCache(cfg.Auth.ResetTokenTTL, cfg.Cache.CleanupInterval, apiMetrics, logger)
	}

	keyManager, err := security.NewKeyManager(cfg.Auth.JWTSecret, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	adminRepo := database.NewAdminRepository(db.DB(), logger)
	prontuarioRepo := database.NewProntuarioRepository(db.DB(), logger)
	reindexed, err := prontuarioRepo.ReindexSearchTerms(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if reindexed > 0 {
		logger.Info("Termos de busca de prontuários reindexados", zap.Int("count", reindexed))
	}

	a.AuthService = auth.NewService(
		adminRepo,
		security.NewPasswordHasher(cfg.Auth.BcryptCost),
		keyManager,
		auth.NewResetTokenStore(a.Cache, cfg.Auth.ResetTokenTTL),
		auth.NewLogNotifier(logger),
		apiMetrics,
		auth.Config{TokenExpiration: cfg.Auth.TokenExpiration},
		logger,
	)
	a.ProntuarioService = prontuario.NewService(prontuarioRepo, apiMetrics, logger)

	opts := middleware.Options{
		Identity:       a.AuthService,
		AllowedOrigins: cfg.Auth.AllowedOrigins,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = apiMetrics
	}
	if cfg.RateLimit.Enabled && limiter != nil {
		opts.RateLimit = middleware.NewRateLimitMiddleware(
			limiter, apiMetrics,
			cfg.RateLimit.Limit, cfg.RateLimit.Period, cfg.RateLimit.BurstFactor,
			logger,
		)
	}
	a.Middleware = middleware.NewMiddleware(logger, opts)

	a.AdminHandler = http.NewAdminHandler(a.AuthService, cfg.Auth.PasswordMinLen, logger)
	a.ProntuarioHandler = http.NewProntuarioHandler(a.ProntuarioService, logger)
	a.HealthChecker = http.NewHealthChecker(db, a.Cache, logger)

	return a, nil
}

// RegisterRoutes registra todas as rotas no router
func (a *App) RegisterRoutes(router *gin.Engine) {
	router.Use(a.Middleware.Recovery())
	router.Use(a.Middleware.IgnoreFavicon())
	router.Use(a.Middleware.RequestID())
	router.Use(a.Middleware.Tracing())
	router.Use(a.Middleware.Logger())
	router.Use(a.Middleware.Metrics())
	router.Use(a.Middleware.SecurityHeaders())
	router.Use(a.Middleware.CORS())
	router.Use(a.Middleware.Authenticate())

	if a.Config.Metrics.Enabled {
		path := a.Config.Metrics.PrometheusPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))
		a.Logger.Info("Endpoint de métricas Prometheus registrado", zap.String("path", path))
	}

	router.GET("/health", a.HealthChecker.LivenessCheck)
	router.GET("/health/liveness", a.HealthChecker.LivenessCheck)
	router.GET("/health/readiness", a.HealthChecker.ReadinessCheck)
	router.GET("/health/detailed", a.Middleware.RequireAuthenticated(), a.HealthChecker.DetailedHealth)

	admin := router.Group("/api/admin")
	{
		public := admin.Group("", a.Middleware.RateLimit())
		public.POST("/register", a.AdminHandler.Register)
		public.POST("/login", a.AdminHandler.Login)
		public.POST("/password-reset-request", a.AdminHandler.RequestPasswordReset)
		public.POST("/reset-password", a.AdminHandler.ResetPassword)

		admin.GET("/me", a.AdminHandler.Me)
	}

	prontuarios := router.Group("/api/prontuarios", a.Middleware.RequireAuthenticated())
	{
		prontuarios.POST("", a.ProntuarioHandler.Create)
		prontuarios.GET("", a.ProntuarioHandler.Search)
		prontuarios.GET("/:id", a.ProntuarioHandler.Get)
		prontuarios.PUT("/:id", a.ProntuarioHandler.Update)
		prontuarios.POST("/:id/historico-medico", a.ProntuarioHandler.AppendHistorico)
		prontuarios.POST("/:id/medicacoes", a.ProntuarioHandler.AppendMedicacao)
		prontuarios.POST("/:id/exames", a.ProntuarioHandler.AppendExame)
		prontuarios.POST("/:id/anotacoes", a.ProntuarioHandler.AppendAnotacao)
		prontuarios.PATCH("/:id/status-tratamento", a.ProntuarioHandler.UpdateStatus)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{"error": "Rota não encontrada", "path": c.Request.URL.Path})
	})
}

// Close libera banco e Redis
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Warn("erro ao fechar cliente Redis", zap.Error(err))
		}
	}
	return a.DB.Close()
}
