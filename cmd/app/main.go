package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wichananm65/ticket-shop-backend/internal/cart"
	"github.com/wichananm65/ticket-shop-backend/internal/checkout"
	"github.com/wichananm65/ticket-shop-backend/internal/config"
	"github.com/wichananm65/ticket-shop-backend/internal/logger"
	"github.com/wichananm65/ticket-shop-backend/internal/order"
	"github.com/wichananm65/ticket-shop-backend/internal/qr"
	"github.com/wichananm65/ticket-shop-backend/internal/storage"
	"github.com/wichananm65/ticket-shop-backend/internal/user"
)

// attemptTTL bounds how long an untouched checkout attempt is kept.
const attemptTTL = time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open slot storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStore()

	cartService := cart.NewService(cart.NewSlotRepository(store), log.Named("cart"))
	orderService := order.NewService(order.NewSlotRepository(store), log.Named("order"))
	userService := user.NewService(user.NewSlotRepository(store), log.Named("user"))

	orchestrator := checkout.NewOrchestrator(cartService, orderService, newRenderer(cfg), checkout.Config{
		MerchantID:         cfg.PromptPayID,
		PaymentMethodLabel: cfg.PaymentMethodLabel,
	}, log.Named("checkout"))
	orchestrator.Subscribe(func(t checkout.Transition) {
		log.Info("checkout transition",
			zap.String("attempt_id", t.AttemptID),
			zap.String("owner", t.Owner),
			zap.Stringer("from", t.From),
			zap.Stringer("to", t.To),
			zap.String("reason", t.Reason),
		)
	})
	registry := checkout.NewRegistry()
	go forgetAttempts(ctx, registry, log)

	app := fiber.New()
	app.Use(logger.RequestLogger(log))
	setupCORS(app)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	user.NewHandler(userService).RegisterProtectedRoutes(app)
	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	order.NewHandler(orderService, userService).RegisterProtectedRoutes(app)
	checkout.NewHandler(orchestrator, registry, userService).RegisterProtectedRoutes(app)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("addr", cfg.Addr), zap.String("storage", cfg.StorageDriver), zap.String("qr", cfg.QRProvider))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: logger.RequestIDHeader,
	}))
}

func openStore(ctx context.Context, cfg config.Config) (storage.SlotStore, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return storage.NewRedisStore(client), func() { client.Close() }, nil

	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres ping failed: %w", err)
		}
		store := storage.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	default:
		return storage.NewMemoryStore(), func() {}, nil
	}
}

func newRenderer(cfg config.Config) qr.Renderer {
	if cfg.QRProvider == config.QRProviderURL {
		return qr.NewURLRenderer(cfg.QRBaseURL)
	}
	return qr.NewPNGRenderer(cfg.QRSize)
}

func forgetAttempts(ctx context.Context, registry *checkout.Registry, log *zap.Logger) {
	ticker := time.NewTicker(attemptTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := registry.Forget(now.Add(-attemptTTL)); n > 0 {
				log.Debug("forgot finished checkout attempts", zap.Int("count", n))
			}
		}
	}
}
