package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/JonnyWalker81/focusmetrics/internal/apierror"
	"github.com/JonnyWalker81/focusmetrics/internal/config"
	"github.com/JonnyWalker81/focusmetrics/internal/handlers"
	"github.com/JonnyWalker81/focusmetrics/internal/logger"
	"github.com/JonnyWalker81/focusmetrics/internal/middleware"
	"github.com/JonnyWalker81/focusmetrics/internal/service"
	"github.com/JonnyWalker81/focusmetrics/internal/telemetry"
	"github.com/JonnyWalker81/focusmetrics/pkg/supabase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and the background metrics refresh worker.`,
	RunE:  runServe,
}

var (
	port string
)

const shutdownTimeout = 15 * time.Second

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	log := newLogger(cfg.Log)
	log.Info("starting focusmetrics API server",
		logger.String("env", cfg.Server.Env),
		logger.String("database", cfg.Database.Driver),
		logger.String("cache", cfg.Cache.Driver),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Environment: cfg.Server.Env,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracing shutdown failed", logger.Err(err))
		}
	}()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	worker := service.NewRefreshWorker(a.analytics, service.RefreshConfig{
		Workers:   cfg.Analytics.Refresh.Workers,
		QueueSize: cfg.Analytics.Refresh.QueueSize,
		Timeout:   cfg.Analytics.Refresh.Timeout,
	}, log)

	// Initialize services
	activityService := service.NewActivityService(a.activityRepo, worker)
	wellnessService := service.NewWellnessService(a.wellnessRepo)

	router, err := newRouter(cfg, a, log,
		handlers.NewActivityHandler(activityService),
		handlers.NewWellnessHandler(wellnessService),
		handlers.NewAnalyticsHandler(a.analytics),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRouter(
	cfg *config.Config,
	a *app,
	log logger.Logger,
	activityHandler *handlers.ActivityHandler,
	wellnessHandler *handlers.WellnessHandler,
	analyticsHandler *handlers.AnalyticsHandler,
) (*gin.Engine, error) {
	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var auth gin.HandlerFunc
	switch cfg.Auth.Mode {
	case "supabase":
		if a.supabase == nil {
			return nil, fmt.Errorf("supabase auth requires SUPABASE_URL")
		}
		auth = middleware.Auth(a.supabase)
	case "jwt":
		auth = middleware.Auth(supabase.NewJWTVerifier(cfg.Auth.JWTSecret))
	default:
		log.Warn("header authentication enabled, X-User-ID is trusted as-is")
		auth = middleware.HeaderAuth()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("focusmetrics-api"))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecurityHeaders(cfg.Server.Env == "production"))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.NoRoute(func(c *gin.Context) {
		apierror.WriteProblem(c, apierror.NewNotFoundError(apierror.GetRequestID(c), c.Request.URL.Path).WithInstance(c.Request.URL.Path))
	})

	// Health check
	router.GET("/health", handlers.Health)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(auth)
	handlers.Register(v1, activityHandler, wellnessHandler, analyticsHandler)

	return router, nil
}
