package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/email"
	"fintrack/internal/finance"
	httpServer "fintrack/internal/http"
	"fintrack/internal/logging"
	"fintrack/internal/metrics"
	"fintrack/internal/ratelimit"
	"fintrack/internal/tasks"
	"fintrack/internal/user"
)

// @title           Fintrack API
// @version         1.0
// @description     Personal finance backend with JWT authentication, email verification, and income/expense tracking.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	sqlDB, db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Apply migrations
	if err := database.RunMigrations(context.Background(), sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	profileRepo := user.NewProfileRepository(db)
	sessionRepo := auth.NewRepository(db)
	financeRepo := finance.NewRepository(db)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize JWT service
	jwtService, err := auth.NewJWTService(
		cfg.Auth.Secret,
		cfg.Auth.Algorithm,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.VerifyTokenTTL,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Initialize email service and mail queue
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.PublicURL,
	)
	mailQueue := tasks.NewQueue(redisClient)

	// Initialize services
	financeService := finance.NewService(financeRepo, logger)
	if err := financeService.InitCurrencies(context.Background()); err != nil {
		return fmt.Errorf("failed to seed currencies: %w", err)
	}

	authService := auth.NewService(
		userRepo,
		sessionRepo,
		jwtService,
		mailQueue,
		financeService,
		logger,
		cfg.Auth.RefreshTokenTTL,
	)

	// Start the mail worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker := tasks.NewWorker(redisClient, emailService, logger)
	go worker.Run(workerCtx)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(
		authService,
		rateLimiter,
		logger,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	authMiddleware := auth.NewMiddleware(jwtService, userRepo)
	userHandler := user.NewHandler(userRepo, profileRepo, authService, auth.HashPassword, auth.GetUserFromContext)
	financeHandler := finance.NewHandler(financeService)

	// Initialize metrics
	m := metrics.New()

	// Initialize router
	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, userHandler, financeHandler, m, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		stopWorker()

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB opens the database connection and returns both the raw sql.DB
// (for migrations) and the Bun wrapper.
func initDB(cfg config.DatabaseConfig) (*sql.DB, *bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return sqlDB, database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
