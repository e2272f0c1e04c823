package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/AhmedEsam99/checkout-service/internal/adapter/console"
	"github.com/AhmedEsam99/checkout-service/internal/adapter/handler"
	"github.com/AhmedEsam99/checkout-service/internal/adapter/storage"
	"github.com/AhmedEsam99/checkout-service/internal/config"
	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
	"github.com/AhmedEsam99/checkout-service/internal/core/service"
	"github.com/AhmedEsam99/checkout-service/internal/obs"
	"github.com/AhmedEsam99/checkout-service/internal/port"
)

func main() {
	obs.InitLogger()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		obs.Logger.Error("failed to connect mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		obs.Logger.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		obs.Logger.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("connected to redis")

	// Initialize adapters
	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)

	// Seed catalog and customers, mirror stock to Redis
	catalog := seedCatalog()
	customers := seedCustomers()
	for _, p := range catalog.List() {
		if err := redisAdapter.SetStock(ctx, p.Name(), p.Quantity()); err != nil {
			obs.Logger.Error("failed to mirror stock", "product", p.Name(), "error", err)
			os.Exit(1)
		}
	}
	obs.Logger.Info("catalog seeded", "products", len(catalog.List()), "customers", len(customers))

	// Initialize service with console collaborators
	checkoutService := service.NewCheckoutService(
		redisAdapter,
		console.NewShippingNotice(os.Stdout),
		console.NewReceiptPrinter(os.Stdout),
		cfg.QueueSize,
	)

	// Start persistence workers
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, checkoutService.GetOrderQueue(), mysqlAdapter)
		}(i)
	}
	obs.Logger.Info("started workers", "count", cfg.WorkerCount)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(checkoutService, catalog, customers, mysqlAdapter)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/checkout", httpHandler.Checkout)
	mux.HandleFunc("/api/products", httpHandler.Products)
	mux.HandleFunc("/api/orders", httpHandler.Orders)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		obs.Logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			obs.Logger.Error("HTTP server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	obs.Logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	obs.Logger.Info("HTTP server stopped")

	// Close order queue and wait for workers
	checkoutService.Close()
	wg.Wait()
	obs.Logger.Info("workers stopped")

	// Close connections
	rdb.Close()
	db.Close()
	obs.Logger.Info("connections closed")
}

// workerLoop drains committed orders into the ledger. Past the checkout
// commit point nothing unwinds, so a failed save is logged, not retried.
func workerLoop(id int, queue <-chan domain.Order, db port.DatabaseRepository) {
	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := db.SaveOrder(ctx, order); err != nil {
			obs.Logger.Error("failed to save order", "worker", id, "order", order.ID, "error", err)
		} else {
			obs.Logger.Info("saved order", "worker", id, "order", order.ID, "total", order.Total)
		}

		cancel()
	}
}

func seedCatalog() *domain.Catalog {
	tomorrow := time.Now().Add(24 * time.Hour)
	lastWeek := time.Now().Add(-7 * 24 * time.Hour)

	catalog := domain.NewCatalog()
	catalog.Add(domain.NewProduct("Cheese", decimal.NewFromInt(100), 5,
		domain.WithExpiry(tomorrow), domain.WithWeight(decimal.RequireFromString("0.2"))))
	catalog.Add(domain.NewProduct("Biscuits", decimal.NewFromInt(150), 2,
		domain.WithExpiry(tomorrow), domain.WithWeight(decimal.RequireFromString("0.7"))))
	catalog.Add(domain.NewProduct("TV", decimal.NewFromInt(300), 3,
		domain.WithWeight(decimal.NewFromInt(5))))
	catalog.Add(domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 10))
	catalog.Add(domain.NewProduct("Expired Milk", decimal.NewFromInt(20), 8,
		domain.WithExpiry(lastWeek), domain.WithWeight(decimal.NewFromInt(1))))
	return catalog
}

func seedCustomers() map[string]*domain.Customer {
	return map[string]*domain.Customer{
		"ahmed": domain.NewCustomer("Ahmed", decimal.NewFromInt(1000)),
		"sara":  domain.NewCustomer("Sara", decimal.NewFromInt(100)),
	}
}
