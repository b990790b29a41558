package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nuwanperera/corebank/configs"
	"github.com/nuwanperera/corebank/internal/handlers"
	"github.com/nuwanperera/corebank/internal/repositories"
	"github.com/nuwanperera/corebank/internal/services"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/cache"
	"github.com/nuwanperera/corebank/pkg/database"
	"github.com/nuwanperera/corebank/pkg/kafka"
	middleware "github.com/nuwanperera/corebank/pkg/middlewares"
	"github.com/nuwanperera/corebank/pkg/utils"
	"go.uber.org/zap"
)

const authRateKey = "corebank:auth_rate"

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	aesKey, err := utils.DecodeAESKey(cfg.AesKey)
	if err != nil {
		return nil, nil, err
	}

	// Initialize postgres db
	dbConfig := database.Config{
		PrimaryDSN: cfg.PrimaryDbAddr,
		ReadDSNs:   []string{cfg.ReplicaDbAddr},
		MaxConns:   cfg.MaxDbCons,
		MinConns:   cfg.MinDbCons,
	}
	db, disconnect, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	// Run migrations on primary
	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		disconnect()
		return nil, nil, err
	}

	// Redis backs sessions and the auth rate limiter
	redisClient, closeRedis, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		disconnect()
		return nil, nil, err
	}
	limiter := pkg.NewDistributedLimiter(redisClient, authRateKey, cfg.AuthRatePerMin, cfg.AuthRateBurst, time.Minute, logger)

	// Ledger events are best effort: without brokers configured the
	// publisher is a no-op.
	var publisher kafka.LedgerEventPublisher = kafka.NoopPublisher{}
	if cfg.KafkaBrokers != "" {
		publisher, err = kafka.NewLedgerEventPublisher(logger, cfg.KafkaBrokers, cfg.KafkaLedgerTopic)
		if err != nil {
			closeRedis()
			disconnect()
			return nil, nil, err
		}
	}

	// Repositories
	userRepo := repositories.NewUserRepository()
	accountRepo := repositories.NewAccountRepository()
	txnRepo := repositories.NewTransactionRepository()
	billRepo := repositories.NewBillRepository()
	loanRepo := repositories.NewLoanRepository()
	cardRepo := repositories.NewCardRepository()

	// Services
	sessions := services.NewRedisSessionStore(redisClient)
	authService := services.NewAuthService(logger, cfg, db, db, userRepo, accountRepo, cardRepo, billRepo, sessions, aesKey)
	ledgerService := services.NewLedgerService(logger, cfg, db, accountRepo, txnRepo, billRepo, publisher)
	accountService := services.NewAccountService(logger, db, accountRepo, txnRepo)
	billingService := services.NewBillingService(logger, db, db, billRepo)
	loanService := services.NewLoanService(logger, db, db, loanRepo)
	cardService := services.NewCardService(logger, db, cardRepo, aesKey)

	// Handlers
	baseHandler := handlers.NewBaseHandler(logger)
	authHandler := handlers.NewAuthHandler(logger, authService, limiter)
	ledgerHandler := handlers.NewLedgerHandler(logger, ledgerService)
	accountHandler := handlers.NewAccountHandler(logger, accountService)
	billingHandler := handlers.NewBillingHandler(logger, billingService, loanService)
	cardHandler := handlers.NewCardHandler(logger, cardService)

	// Router
	r := gin.Default()

	api := r.Group("/api")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())
	authHandler.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.Auth(logger, authService))
	authHandler.RegisterProtectedRoutes(protected)
	ledgerHandler.RegisterRoutes(protected)
	accountHandler.RegisterRoutes(protected)
	billingHandler.RegisterRoutes(protected)
	cardHandler.RegisterRoutes(protected)

	baseHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	cleanup := func() {
		publisher.Close()
		closeRedis()
		disconnect()
	}

	return srv, cleanup, nil
}
