package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ecommerce-backend/internal/client"
	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/logger"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/server"
	"ecommerce-backend/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	db, err := client.InitSQLiteClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to initialise database", zap.Error(err))
	}
	paypalClient := client.NewPaypalClient(&cfg.Paypal)

	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWT)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	cartService := service.NewCartService(txManager, cartRepo, productRepo)
	orderService := service.NewOrderService(txManager, orderRepo, cartRepo, productRepo, paymentRepo, log)
	paymentService := service.NewPaymentService(
		txManager, paypalClient,
		orderRepo, paymentRepo, webhookEventRepo,
		cfg.Paypal.Currency, log,
	)

	srv := server.NewServer(
		cfg.JWT.Secret, log,
		authService, catalogService, cartService, orderService, paymentService,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
