package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"blogapi/docs"
	"blogapi/internal/cache"
	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/database/migration"
	"blogapi/internal/events"
	handlers "blogapi/internal/http/handler"
	"blogapi/internal/http/middleware"
	"blogapi/internal/logger"
	"blogapi/internal/media"
	tracing "blogapi/internal/otel"
	"blogapi/internal/repository/postgres"
	"blogapi/internal/service"
	"blogapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Blog API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New("blogapi", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, db, cfg.Database.Name); err != nil {
		log.WithError(err).Warn("failed to register database pool metrics")
	}

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	objStore, err := storage.New(*cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	urls := media.NewURLBuilder(cfg.Storage.PublicURL, cfg.Storage.LegacyPrefixes...)
	images := media.NewStore(objStore, urls, log)

	readCache := newCache(ctx, cfg.Redis, log)
	defer readCache.Close()

	publisher := newPublisher(cfg.NATS.URL, log)
	defer publisher.Close()

	// Initialize repositories and services
	userRepo := postgres.NewUserPostgres(db)
	tokenRepo := postgres.NewTokenPostgres(db)
	categoryRepo := postgres.NewCategoryPostgres(db)
	tagRepo := postgres.NewTagPostgres(db)
	postRepo := postgres.NewPostPostgres(db)
	commentRepo := postgres.NewCommentPostgres(db)

	svc := handlers.Services{
		Auth: service.NewAuthService(userRepo, tokenRepo, images, publisher, service.AuthOptions{
			TokenTTL:   time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
			BcryptCost: cfg.Auth.BcryptCost,
		}, log),
		User:     service.NewUserService(userRepo, images, cfg.Auth.BcryptCost, cfg.Storage.DefaultAvatar, log),
		Category: service.NewCategoryService(categoryRepo, images, readCache, log),
		Tag:      service.NewTagService(tagRepo, readCache, log),
		Post:     service.NewPostService(postRepo, userRepo, categoryRepo, tagRepo, images, publisher, log),
		Comment:  service.NewCommentService(commentRepo, postRepo, publisher, log),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimit(),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(middleware.Logger(log))

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}
	app.Use(metrics.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, objStore, svc, handlers.Media{
		URLs:          urls,
		DefaultAvatar: cfg.Storage.DefaultAvatar,
		MaxImageBytes: cfg.Storage.MaxImageKB * 1024,
		MaxPostImages: cfg.Storage.MaxPostImages,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	go func() {
		if err := app.Listen(addr); err != nil {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()
	log.WithFields(logrus.Fields{"addr": addr, "storage_driver": cfg.Storage.Driver}).Info("server started")

	<-ctx.Done()
	log.Info("shutting down")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.WithError(err).Error("tracing shutdown")
	}
}

// newCache connects to Redis when configured and falls back to no caching otherwise.
func newCache(ctx context.Context, cfg config.RedisConfig, log *logrus.Entry) cache.Cache {
	if cfg.Addr == "" {
		return cache.Noop{}
	}
	c, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("redis_addr", cfg.Addr).Warn("redis unavailable, caching disabled")
		return cache.Noop{}
	}
	return c
}

func newPublisher(url string, log *logrus.Entry) events.Publisher {
	if url == "" {
		return events.Noop{}
	}
	p, err := events.NewNATS(url)
	if err != nil {
		log.WithError(err).WithField("nats_url", url).Warn("nats unavailable, events disabled")
		return events.Noop{}
	}
	return p
}
