package routes

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/auth"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/config"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/identity"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/iot"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/marketplace"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/metrics"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/middleware"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/notification"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/soil"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *redis.Client
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Notifier receives every outgoing notification after it is recorded.
	Notifier notification.Notifier
	// ObjectStore enables soil report uploads when set.
	ObjectStore soil.ObjectStore
}

type repositories struct {
	users         identity.Repository
	listings      marketplace.Repository
	readings      iot.Repository
	notifications notification.Repository
	reports       soil.Repository
}

func newRepositories(db *pgxpool.Pool) repositories {
	if db == nil {
		return repositories{
			users:         identity.NewMemoryRepository(),
			listings:      marketplace.NewMemoryRepository(),
			readings:      iot.NewMemoryRepository(),
			notifications: notification.NewMemoryRepository(),
			reports:       soil.NewMemoryRepository(),
		}
	}
	return repositories{
		users:         identity.NewPostgresRepository(db),
		listings:      marketplace.NewPostgresRepository(db),
		readings:      iot.NewPostgresRepository(db),
		notifications: notification.NewPostgresRepository(db),
		reports:       soil.NewPostgresRepository(db),
	}
}

// except runs h for every request whose path does not start with prefix.
func except(prefix string, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), prefix) {
			return c.Next()
		}
		return h(c)
	}
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.DB == nil && !d.Cfg.IsDev() {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: d.Cfg.CORSOrigins}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Metrics != nil {
		app.Use(middleware.Metrics(d.Metrics))
	}
	if d.Cache != nil {
		// credentials are checked on every /auth attempt, never replayed
		app.Use(except("/auth/", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)))
	}

	RegisterHealthRoutes(app, d)
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics.Handler())
	}

	repos := newRepositories(d.DB)
	notifications := notification.NewService(repos.notifications, d.Notifier)

	identitySvc := identity.NewService(repos.users, identity.NewHasher(d.Cfg.BcryptCost))
	issuer := auth.NewIssuer(d.Cfg.JWTSecret, d.Cfg.JWTIssuer, d.Cfg.AccessTokenTTL)
	authSvc := auth.NewService(identitySvc, issuer, notifications, d.Metrics, d.Logger)
	authn := middleware.Authenticate(authSvc)

	RegisterAuthRoutes(app, AuthRoutes{
		Auth:        auth.NewHandler(authSvc),
		Profile:     identity.NewHandler(identitySvc),
		RateLimiter: middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRatePerMinute, d.Logger),
		Authn:       authn,
	})

	marketSvc := marketplace.NewService(repos.listings, notifications, d.Logger)
	RegisterMarketplaceRoutes(app, marketplace.NewHandler(marketSvc), authn)

	iotSvc := iot.NewService(repos.readings, notifications, d.Logger)
	RegisterIoTRoutes(app, iot.NewHandler(iotSvc))

	RegisterNotificationRoutes(app, notification.NewHandler(notifications), authn)

	if d.ObjectStore != nil {
		soilSvc := soil.NewService(repos.reports, d.ObjectStore, int64(d.Cfg.MaxUploadBytes))
		RegisterSoilRoutes(app, soil.NewHandler(soilSvc), authn)
	} else {
		d.Logger.Info("soil report uploads disabled: no object store configured")
	}

	return nil
}
