package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/user-auth-service/internal/core/port"
	"github.com/arklim/user-auth-service/internal/infra/config"
	"github.com/arklim/user-auth-service/internal/infra/database"
	kafkainfra "github.com/arklim/user-auth-service/internal/infra/kafka"
	"github.com/arklim/user-auth-service/internal/infra/logger"
	redisinfra "github.com/arklim/user-auth-service/internal/infra/redis"
	"github.com/arklim/user-auth-service/internal/infra/security"
	postgresrepo "github.com/arklim/user-auth-service/internal/repository/postgres"
	redisrepo "github.com/arklim/user-auth-service/internal/repository/redis"
	"github.com/arklim/user-auth-service/internal/transport/http/middleware"
	"github.com/arklim/user-auth-service/internal/transport/http/routes"
	"github.com/arklim/user-auth-service/internal/usecase"
)

// Application wires configuration, infrastructure, and transport together.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

// New builds the application from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := security.ConfigureBcryptCost(cfg.Bcrypt.Cost); err != nil {
		return nil, fmt.Errorf("configure bcrypt: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	userStore := postgresrepo.NewUserStore(pool)
	sessionDuration := time.Duration(cfg.Session.Duration) * time.Second

	application := &Application{
		cfg:    cfg,
		logger: log,
		pool:   pool,
	}

	var registry port.SessionRegistry
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient, err := redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		application.redis = redisClient
		registry = redisrepo.NewSessionRegistry(redisClient.Client(), cfg.Redis.KeyPrefix, sessionDuration)
	default:
		registry = usecase.NewSessionService(userStore, sessionDuration, log)
	}

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			application.kafka = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	passwordValidator := security.DefaultPasswordValidator()

	resetService := usecase.NewPasswordResetService(userStore, registry, passwordValidator, eventPublisher, log)
	authService := usecase.NewAuthService(userStore, registry, resetService, passwordValidator, eventPublisher, log)

	var strategy usecase.Strategy
	switch cfg.Auth.Mode {
	case config.AuthModeBasic:
		strategy = usecase.NewBasicAuthStrategy(userStore)
	default:
		strategy = usecase.NewSessionAuthStrategy(userStore, registry, cfg.Session.Name)
	}

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		application.closeInfra()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Strategy: strategy,
		Metrics:  metrics,
		Database: pool,
		Services: routes.ServiceSet{
			Auth:          authService,
			PasswordReset: resetService,
		},
	}
	if application.redis != nil {
		deps.Cache = application.redis
	}

	application.engine = routes.Register(deps)

	return application, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.closeInfra()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("auth_mode", a.cfg.Auth.Mode),
		zap.String("session_backend", a.cfg.Session.Backend),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func (a *Application) closeInfra() {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
		a.kafka = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
