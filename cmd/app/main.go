package main

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nowiht/storefront-backend/internal/address"
	"github.com/nowiht/storefront-backend/internal/cache"
	"github.com/nowiht/storefront-backend/internal/category"
	"github.com/nowiht/storefront-backend/internal/checkout"
	"github.com/nowiht/storefront-backend/internal/config"
	"github.com/nowiht/storefront-backend/internal/logger"
	"github.com/nowiht/storefront-backend/internal/metaobject"
	"github.com/nowiht/storefront-backend/internal/metrics"
	"github.com/nowiht/storefront-backend/internal/order"
	"github.com/nowiht/storefront-backend/internal/payment"
	"github.com/nowiht/storefront-backend/internal/preferences"
	"github.com/nowiht/storefront-backend/internal/product"
	"github.com/nowiht/storefront-backend/internal/recommended"
	"github.com/nowiht/storefront-backend/internal/sizing"
	"github.com/nowiht/storefront-backend/internal/upload"
	"github.com/nowiht/storefront-backend/internal/user"
	"github.com/nowiht/storefront-backend/internal/wishlist"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		ServiceName: "nowiht-storefront",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Fatal("JWT_SECRET is not set")
		}
		cfg.JWTSecret = "dev-secret"
		log.Warn("JWT_SECRET is not set, using an insecure development secret")
	}

	ctx := context.Background()
	db := mustOpenDB(ctx, cfg.DatabaseURL)
	if err := ensureSchema(ctx, db); err != nil {
		log.Fatal("schema setup failed", zap.Error(err))
	}

	m := metrics.New()
	redisCache, catalogCache := openCatalogCache(ctx, cfg)

	// repositories and services
	productSvc := product.NewService(product.NewPostgresRepository(db), catalogCache, m)
	categorySvc := category.NewService(category.NewPostgresRepository(db), productSvc)
	metaSvc := metaobject.NewService(metaobject.NewPostgresRepository(db))
	checkoutSvc := checkout.NewService(productSvc)
	userSvc := user.NewService(user.NewPostgresRepository(db), cfg.JWTSecret, cfg.JWTTTL)

	numbers, err := order.NewNumberGenerator()
	if err != nil {
		log.Fatal("order number generator", zap.Error(err))
	}
	orderSvc := order.NewService(order.NewPostgresRepository(db), checkoutSvc, productSvc, newNotifier(cfg, log), numbers, m)

	uploadStore, err := upload.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("upload directory", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	if cfg.AdminEmail != "" {
		if err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("admin bootstrap failed", zap.String("email", cfg.AdminEmail), zap.Error(err))
		}
	}
	if cfg.SeedCatalog {
		if err := seedCatalog(ctx, productSvc, categorySvc); err != nil {
			log.Error("catalog seed failed", zap.Error(err))
		}
	}

	// handlers
	userHandler := user.NewHandler(userSvc)
	productHandler := product.NewHandler(productSvc)
	categoryHandler := category.NewHandler(categorySvc)
	metaHandler := metaobject.NewHandler(metaSvc)
	recommendedHandler := recommended.NewHandler(recommended.NewService(productSvc))
	sizingHandler := sizing.NewHandler()
	checkoutHandler := checkout.NewHandler(checkoutSvc)
	orderHandler := order.NewHandler(orderSvc)
	paymentHandler := payment.NewHandler(payment.NewVerifier(cfg.WebhookSecret, payment.DefaultTolerance), orderSvc)
	uploadHandler := upload.NewHandler(upload.NewService(uploadStore, cfg.PublicBaseURL, m))
	addressHandler := address.NewHandler(address.NewService(address.NewPostgresRepository(db)))
	preferencesHandler := preferences.NewHandler(preferences.NewService(preferences.NewPostgresRepository(db)))
	wishlistHandler := wishlist.NewHandler(wishlist.NewService(wishlist.NewPostgresRepository(db), productSvc))

	app := fiber.New(fiber.Config{
		AppName:   "nowiht-storefront",
		BodyLimit: upload.MaxSize + 1<<20,
	})
	app.Use(recover.New())
	setupCORS(app, cfg.CORSOrigins)
	app.Use(logger.Middleware(log))
	app.Use(m.Middleware())

	app.Get("/metrics", m.Handler())
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// public routes must be registered before the JWT middleware
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	metaHandler.RegisterPublicRoutes(app)
	recommendedHandler.RegisterPublicRoutes(app)
	sizingHandler.RegisterPublicRoutes(app)
	checkoutHandler.RegisterPublicRoutes(app)
	paymentHandler.RegisterPublicRoutes(app)
	uploadHandler.RegisterPublicRoutes(app)

	// guests may check out; a token, when sent, links the order to the account
	orderHandler.RegisterCheckoutRoutes(app, user.Middleware(cfg.JWTSecret, true))

	app.Use(user.Middleware(cfg.JWTSecret, false))

	userHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	preferencesHandler.RegisterProtectedRoutes(app)
	wishlistHandler.RegisterProtectedRoutes(app)

	admin := app.Group("/api/v1/admin", user.RequireAdmin)
	userHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	categoryHandler.RegisterAdminRoutes(admin)
	metaHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	uploadHandler.RegisterAdminRoutes(admin)

	ops := map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
		"postgres": func(context.Context) error {
			return db.Close()
		},
	}
	if redisCache != nil {
		ops["redis"] = func(context.Context) error { return redisCache.Close() }
	}
	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, ops)

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Addr))
		if err := app.Listen(cfg.Addr); err != nil {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	exitCode := <-wait
	log.Info("shutdown complete", zap.Int("exit_code", exitCode))
	_ = log.Sync()
	os.Exit(exitCode)
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + logger.RequestIDHeader,
		ExposeHeaders: logger.RequestIDHeader,
	}))
}

func mustOpenDB(ctx context.Context, dbURL string) *sql.DB {
	if dbURL == "" {
		zap.L().Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		zap.L().Fatal("open database", zap.Error(err))
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		zap.L().Fatal("ping database", zap.Error(err))
	}
	return db
}

// openCatalogCache connects to Redis when configured. Any failure falls back
// to an always-miss cache so the catalog keeps serving from Postgres.
func openCatalogCache(ctx context.Context, cfg config.Config) (*cache.Cache, cache.Store) {
	if cfg.RedisAddr == "" {
		zap.L().Info("catalog cache disabled")
		return nil, cache.Noop{}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	catalog := cache.New(client, "nowiht:catalog:", cfg.CatalogCacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := catalog.Ping(pingCtx); err != nil {
		zap.L().Warn("redis unavailable, catalog cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = catalog.Close()
		return nil, cache.Noop{}
	}
	return catalog, catalog
}

func newNotifier(cfg config.Config, log *zap.Logger) order.Notifier {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return order.NewLogNotifier(log)
	}
	return order.NewSMTPNotifier(cfg.SMTP)
}
