package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	gqlhandler "github.com/graphql-go/handler"
	_ "github.com/lib/pq"
	"github.com/lmittmann/tint"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/billing"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/command"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/config"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/events"
	authgraphql "github.com/Rakete-RSO/zapiski-ai-auth/internal/graphql"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/grpcserver"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/handler"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/middleware"
	authquery "github.com/Rakete-RSO/zapiski-ai-auth/internal/query"
	authredis "github.com/Rakete-RSO/zapiski-ai-auth/internal/redis"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/repository"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg)
	if !cfg.DevelopmentMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fatal("failed to ping database", err)
	}

	// Redis read store
	redisClient, err := authredis.NewClient(cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		fatal("failed to connect to redis", err)
	}
	defer redisClient.Close()

	// Token manager
	tokens, err := token.NewManager(cfg.SecretKey, cfg.Algorithm, time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute)
	if err != nil {
		fatal("failed to configure token manager", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	userReadRepo := repository.NewUserReadRepository(db, redisClient.Client)
	billingRepo := repository.NewBillingRepository(db)

	// The publisher is optional: the HTTP surface stays up when the broker
	// is down, and the listener below reconnects on its own.
	var publisher command.EventPublisher
	amqpPublisher, err := events.NewPublisher(cfg.AMQPURL())
	if err != nil {
		slog.Warn("broker unavailable, user events disabled", "error", err)
	} else {
		publisher = amqpPublisher
		defer amqpPublisher.Close()
	}

	// CQRS services
	commandSvc := command.NewAuthCommandService(userRepo, userReadRepo, publisher)
	querySvc := authquery.NewAuthQueryService(userRepo, userReadRepo, tokens)

	// Billing listener
	listenerCtx, stopListener := context.WithCancel(context.Background())
	defer stopListener()
	listener := billing.NewListener(cfg.AMQPURL(), billingRepo)
	go func() {
		if err := listener.Run(listenerCtx); err != nil && listenerCtx.Err() == nil {
			slog.Error("billing listener stopped", "error", err)
		}
	}()

	// Billing API client (circuit-broken)
	billingClient := billing.NewClient(cfg.BillingAPIURL)

	// Handlers
	authHandler := handler.NewAuthHandler(commandSvc, querySvc)
	billingHandler := handler.NewBillingHandler(billingClient, billingRepo)

	schema, err := authgraphql.NewSchema(commandSvc, querySvc)
	if err != nil {
		fatal("failed to build graphql schema", err)
	}
	graphqlHandler := gqlhandler.New(&gqlhandler.Config{
		Schema:   &schema,
		Pretty:   cfg.DevelopmentMode,
		GraphiQL: true,
	})

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())

	requireAuth := middleware.AuthMiddleware(tokens)

	// Flat routes kept for compatibility with existing clients.
	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.GET("/verify-token", requireAuth, authHandler.VerifyToken)

	v1 := router.Group("/v1/auth")
	{
		v1.POST("/register", authHandler.Register)
		v1.POST("/login", authHandler.Login)
		v1.POST("/refresh", authHandler.RefreshToken)
		v1.GET("/verify-token", requireAuth, authHandler.VerifyToken)
		v1.GET("/me", requireAuth, authHandler.Me)
	}

	billingGroup := router.Group("/v1/billing", requireAuth)
	{
		billingGroup.POST("/checkout", billingHandler.Checkout)
		billingGroup.GET("/records", billingHandler.ListRecords)
	}

	router.POST("/graphql", gin.WrapH(graphqlHandler))
	router.GET("/graphql", gin.WrapH(graphqlHandler))
	// GraphiQL doubles as the interactive API documentation page.
	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/graphql")
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// gRPC health endpoint for intra-cluster probes
	grpcShutdown, err := grpcserver.Start(":" + cfg.GRPCPort)
	if err != nil {
		fatal("failed to start grpc server", err)
	}
	slog.Info("grpc server listening", "port", cfg.GRPCPort)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		slog.Info("auth service starting", "port", cfg.Port, "development_mode", cfg.DevelopmentMode)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("failed to start server", err)
		}
	}()

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	slog.Info("shutting down")

	stopListener()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	if err := grpcShutdown(ctx); err != nil {
		slog.Error("grpc shutdown error", "error", err)
	}
}

func setupLogger(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.DevelopmentMode {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
