package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/config"
	"github.com/ignatzorin/marketplace-backend/internal/db"
	"github.com/ignatzorin/marketplace-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/marketplace-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/marketplace-backend/internal/http/router"
	"github.com/ignatzorin/marketplace-backend/internal/logger"
	"github.com/ignatzorin/marketplace-backend/internal/mail"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/service"
	"github.com/ignatzorin/marketplace-backend/internal/storage"
	"github.com/ignatzorin/marketplace-backend/internal/worker"
	"github.com/ignatzorin/marketplace-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	mediaStorage, err := buildMediaStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("main: не удалось подготовить хранилище файлов: %v", err)
	}

	// Почта. Пустой ключ выключает отправку, сервис работает без писем.
	var mailer mail.Mailer
	if plunk := mail.NewPlunkMailer(cfg.PlunkAPIURL, cfg.PlunkAPIKey, cfg.PlunkFrom); plunk != nil {
		mailer = plunk
	}

	// Репозитории.
	principalRepo := repository.NewPrincipalRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	cartRepo := repository.NewCartRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	transactionRepo := repository.NewTransactionRepository(dbConn)
	postRepo := repository.NewPostRepository(dbConn)
	chatRepo := repository.NewChatRepository(dbConn)
	subscriptionRepo := repository.NewSubscriptionRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGo(hub.Run)

	// Сервисы.
	authService := service.NewAuthService(principalRepo, tokenManager, mailer)
	catalogService := service.NewCatalogService(catalogRepo)
	orderService := service.NewOrderService(orderRepo, catalogRepo, cfg.WalletSettlement == config.SettlementLiteral)
	cartService := service.NewCartService(cartRepo)
	walletService := service.NewWalletService(walletRepo)
	transactionService := service.NewTransactionService(transactionRepo)
	postService := service.NewPostService(postRepo)
	chatService := service.NewChatService(chatRepo, hub)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo)

	// Фоновая проверка истёкших подписок.
	sweep := worker.NewSubscriptionSweep(subscriptionService, cfg.SubscriptionSweepPeriod)
	sweep.Start(ctx)

	// HTTP хэндлеры.
	h := httpRouter.Handlers{
		Auth:         httpHandlers.NewAuthHandler(authService),
		Catalog:      httpHandlers.NewCatalogHandler(catalogService),
		Order:        httpHandlers.NewOrderHandler(orderService),
		Cart:         httpHandlers.NewCartHandler(cartService),
		Wallet:       httpHandlers.NewWalletHandler(walletService),
		Transaction:  httpHandlers.NewTransactionHandler(transactionService),
		Post:         httpHandlers.NewPostHandler(postService),
		Chat:         httpHandlers.NewChatHandler(chatService, orderService),
		Subscription: httpHandlers.NewSubscriptionHandler(subscriptionService),
		Media:        httpHandlers.NewMediaHandler(mediaStorage),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager, chatService),
		Health:       httpHandlers.NewHealthHandler(dbConn),
	}

	engine := httpRouter.SetupRouter(cfg, h, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// buildMediaStorage выбирает бэкенд хранилища: S3, если задан бакет, иначе диск.
func buildMediaStorage(ctx context.Context, cfg *config.Config) (storage.MediaStorage, error) {
	if cfg.AWSS3Bucket != "" {
		return storage.NewS3Storage(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.AWSS3Bucket, cfg.MaxUploadSizeMB)
	}
	return storage.NewPhotoStorage(cfg.MediaStoragePath, "/media", cfg.MaxUploadSizeMB)
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
