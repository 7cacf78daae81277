package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/wichananm65/grocery-pos-backend/internal/auth"
	"github.com/wichananm65/grocery-pos-backend/internal/catalog"
	"github.com/wichananm65/grocery-pos-backend/internal/checkout"
	"github.com/wichananm65/grocery-pos-backend/internal/config"
	"github.com/wichananm65/grocery-pos-backend/internal/customer"
	"github.com/wichananm65/grocery-pos-backend/internal/db"
	"github.com/wichananm65/grocery-pos-backend/internal/events"
	"github.com/wichananm65/grocery-pos-backend/internal/metrics"
	"github.com/wichananm65/grocery-pos-backend/internal/middleware"
	"github.com/wichananm65/grocery-pos-backend/internal/order"
)

func main() {
	_ = godotenv.Load()
	lg := log.New(os.Stdout, "[pos] ", log.LstdFlags|log.Lmsgprefix)

	cfg, err := config.Load()
	if err != nil {
		lg.Fatalf("config: %v", err)
	}
	policy, err := checkout.ParseStockPolicy(cfg.StockPolicy)
	if err != nil {
		lg.Fatalf("config: %v", err)
	}

	conn := mustOpenDB(cfg.DatabaseURL, lg)
	defer conn.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(conn, lg); err != nil {
			lg.Fatalf("migrations: %v", err)
		}
	}

	customers := customer.NewPostgresRepository(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := customers.EnsureGuest(ctx, cfg.GuestCustomerID); err != nil {
		lg.Fatalf("ensure guest customer %d: %v", cfg.GuestCustomerID, err)
	}
	cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	publisher, closePublisher := newPublisher(cfg, lg)
	defer closePublisher()

	products := catalog.NewPostgresRepository(conn)
	checkoutService := checkout.NewService(checkout.Config{
		TaxRate:         cfg.TaxRate,
		GuestCustomerID: cfg.GuestCustomerID,
		StockPolicy:     policy,
	}, checkout.Deps{
		Store:     checkout.NewPostgresStore(conn),
		Catalog:   products,
		Customers: customers,
		Publisher: publisher,
		Metrics:   metrics.NewCheckout(reg),
		Logger:    lg,
	})

	checkoutHandler := checkout.NewHandler(checkoutService)
	orderHandler := order.NewHandler(order.NewService(order.NewPostgresRepository(conn)))
	catalogHandler := catalog.NewHandler(catalog.NewService(products))

	app := fiber.New(fiber.Config{AppName: "grocery-pos"})
	setupMiddleware(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))

	if cfg.JWTSecret != "" {
		app.Use(auth.Optional(cfg.JWTSecret))
	}
	checkoutHandler.RegisterPublicRoutes(app)
	orderHandler.RegisterPublicRoutes(app)
	catalogHandler.RegisterPublicRoutes(app)

	if cfg.JWTSecret != "" {
		app.Use(auth.Required(cfg.JWTSecret))
	} else {
		lg.Printf("JWT_SECRET not set, admin routes are not protected")
	}
	orderHandler.RegisterProtectedRoutes(app)
	catalogHandler.RegisterProtectedRoutes(app)

	go func() {
		lg.Printf("listening on %s (stock policy %s, tax rate %s)", cfg.Addr, policy, cfg.TaxRate)
		if err := app.Listen(cfg.Addr); err != nil {
			lg.Fatalf("server stopped: %v", err)
		}
	}()

	stop, release := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer release()
	<-stop.Done()

	lg.Printf("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Printf("shutdown: %v", err)
	}
}

func setupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderCorrelationID,
	}))
	app.Use(middleware.CorrelationID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency} cid=${respHeader:" + middleware.HeaderCorrelationID + "}\n",
	}))
}

func mustOpenDB(dsn string, lg *log.Logger) *sql.DB {
	conn, err := db.Open(dsn)
	if err != nil {
		lg.Fatalf("database: %v", err)
	}
	return conn
}

// newPublisher returns the Kafka publisher when brokers are configured and a
// no-op one otherwise.
func newPublisher(cfg config.Config, lg *log.Logger) (events.Publisher, func()) {
	brokers := events.ParseBrokers(cfg.KafkaBrokers)
	if len(brokers) == 0 {
		return events.NopPublisher{}, func() {}
	}
	p := events.NewKafkaPublisher(brokers, cfg.KafkaOrderTopic)
	lg.Printf("publishing order events to %s on %v", cfg.KafkaOrderTopic, brokers)
	return p, func() {
		if err := p.Close(); err != nil {
			lg.Printf("close kafka writer: %v", err)
		}
	}
}
