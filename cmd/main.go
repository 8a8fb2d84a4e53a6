package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/account"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/address"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/catalog"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/config"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/db"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/dedup"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/events"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/httpapi"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/payment"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/settings"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/voucher"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[checkout-service] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	pool := db.MustOpen(ctx)
	defer pool.Close()

	if err := db.RunMigrations(db.GetDSN(), logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}

	stores := checkout.Stores{
		Carts:     cart.NewPostgresRepository(),
		Catalog:   catalog.NewPostgresRepository(pool),
		Accounts:  account.NewPostgresRepository(),
		Addresses: address.NewPostgresRepository(),
		Payments:  payment.NewPostgresRepository(),
		Vouchers:  voucher.NewPostgresRepository(),
		Orders:    order.NewPostgresRepository(pool),
		Settings:  settings.NewPostgresRepository(),
		Attempts:  dedup.NewRepository(pool),
	}

	// RabbitMQ is optional: without it settlements still work, they just
	// emit no OrderCreated events.
	var publisher checkout.EventPublisher
	if cfg.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("dial rabbitmq: %v", err)
		}
		defer conn.Close()

		p, err := events.NewPublisher(conn, events.NewSequenceRepository(pool))
		if err != nil {
			logger.Fatalf("create publisher: %v", err)
		}
		defer p.Close()
		publisher = p
	} else {
		logger.Println("RABBITMQ_URL not set, events disabled")
	}

	svc := checkout.NewService(pool, stores, publisher, logger)
	orderRepo := order.NewPostgresRepository(pool)

	// HTTP
	handler := httpapi.NewHandler(svc, orderRepo, logger)
	router := httpapi.NewRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Printf("checkout-service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
}
