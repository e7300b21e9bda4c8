package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodzz/internal/auth"
	"foodzz/internal/config"
	"foodzz/internal/db"
	"foodzz/internal/food"
	"foodzz/internal/httpapi"
	"foodzz/internal/logger"
	"foodzz/internal/metrics"
	"foodzz/internal/middleware"
	"foodzz/internal/notify"
	"foodzz/internal/order"
	"foodzz/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Swapped in tests.
var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
	dialAMQPFunc    = func(url, exchange string) (notify.Publisher, func() error, error) {
		p, err := notify.DialAMQP(url, exchange)
		if err != nil {
			return nil, nil, err
		}
		return p, func() error { p.Close(); return nil }, nil
	}
)

func main() {
	if err := run(); err != nil {
		logger.L().Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// server is everything newServer wires together.
type server struct {
	handler http.Handler
	hub     *notify.Hub
	limiter *middleware.RateLimiter
	closers []func() error
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(config.RoleServer); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tpOpts := telemetry.Options{ServiceName: cfg.OTelServiceName, Endpoint: cfg.OTelEndpoint}
	if cfg.OTelStdout {
		tpOpts.Stdout = os.Stdout
	}
	tp, err := telemetry.Setup(ctx, tpOpts)
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	database := initDBFunc(cfg)
	defer database.Close()

	s, err := newServer(cfg, database)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range s.closers {
			_ = c()
		}
	}()
	go s.limiter.Cleanup(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("🚀 foodzz API running", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServer(cfg *config.Config, database *sql.DB) (*server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, auth.DefaultTTL)
	if err != nil {
		return nil, err
	}
	creds, err := auth.NewCredentials(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	s := &server{hub: notify.NewHub(middleware.OriginChecker(cfg.AllowedOrigins))}
	publishers := notify.Multi{s.hub}
	if cfg.AMQPURL != "" {
		p, closeFn, err := dialAMQPFunc(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
		s.closers = append(s.closers, closeFn)
	}
	if err := metrics.GaugeFunc("ws_clients", "Connected dashboard sockets", func() float64 {
		return float64(s.hub.Clients())
	}); err != nil {
		return nil, err
	}

	foodRepo := food.NewRepository(database)
	foodSvc := food.NewService(foodRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, foodRepo, cfg.Policy, publishers)

	router := httpapi.NewRouter(httpapi.Deps{
		Foods:       foodSvc,
		Orders:      orderSvc,
		Issuer:      issuer,
		Credentials: creds,
		Events:      publishers,
		Hub:         s.hub,
		DB:          database,
	})

	s.limiter = middleware.NewRateLimiter(cfg.InternalSecretKey)
	s.handler = middleware.Chain(router,
		telemetry.Middleware(cfg.OTelServiceName, "/metrics", "/api/health"),
		logger.RequestIDMiddleware,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Auth(issuer),
		middleware.LoggingMiddleware,
		s.limiter.Middleware,
	)
	return s, nil
}
