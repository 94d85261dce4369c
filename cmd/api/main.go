package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Motasaith/abdulshop-backend/api/routes"
	"github.com/Motasaith/abdulshop-backend/internal/inventory"
	"github.com/Motasaith/abdulshop-backend/internal/mailer"
	"github.com/Motasaith/abdulshop-backend/internal/notifications"
	"github.com/Motasaith/abdulshop-backend/internal/orders"
	"github.com/Motasaith/abdulshop-backend/internal/products"
	"github.com/Motasaith/abdulshop-backend/internal/settlement"
	"github.com/Motasaith/abdulshop-backend/internal/wallets"
	"github.com/Motasaith/abdulshop-backend/pkg/config"
	"github.com/Motasaith/abdulshop-backend/pkg/db"
	"github.com/Motasaith/abdulshop-backend/pkg/logger"
	"github.com/Motasaith/abdulshop-backend/pkg/migrate"
	"github.com/Motasaith/abdulshop-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ordersRepo := orders.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	walletsRepo := wallets.NewRepository(dbClient.DB())

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	inventorySvc, err := inventory.NewService(productsRepo, notificationsSvc, logg, cfg.Inventory)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	settlementSvc, err := settlement.NewService(ordersRepo, productsRepo, walletsRepo, logg, cfg.Settlement)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	mail, err := mailer.NewLogMailer(logg, cfg.Mail)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(
		ordersRepo,
		dbClient,
		productsRepo,
		inventorySvc,
		settlementSvc,
		notificationsSvc,
		mail,
		logg,
		cfg.Orders,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, ordersSvc, notificationsSvc),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
