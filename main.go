package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HSouheill/couplecanvas_backend/config"
	"github.com/HSouheill/couplecanvas_backend/controllers"
	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/logger"
	"github.com/HSouheill/couplecanvas_backend/middleware"
	"github.com/HSouheill/couplecanvas_backend/repositories"
	"github.com/HSouheill/couplecanvas_backend/routes"
	"github.com/HSouheill/couplecanvas_backend/security"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/HSouheill/couplecanvas_backend/utils"
	"github.com/HSouheill/couplecanvas_backend/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.App.LogFilePath, cfg.IsProduction())
	defer log.Sync()

	if cfg.App.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.ConnectDB(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(disconnectCtx)
	}()
	db := client.Database(cfg.Database.Name)

	redisClient := config.ConnectRedis(cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var reporter logger.Reporter = logger.NopReporter{}
	if config.InitSentry(cfg.App, log) {
		reporter = logger.SentryReporter{}
		defer config.FlushSentry()
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	publishers := events.Multi{hub}
	if cfg.App.NatsURL != "" {
		nats, err := events.NewNATSPublisher(ctx, cfg.App.NatsURL, log)
		if err != nil {
			log.Warn("NATS unavailable, events stay local", zap.Error(err))
		} else {
			defer nats.Close()
			publishers = append(publishers, nats)
		}
	}

	var notifier services.Notifier
	if mailer := utils.NewMailer(cfg.SMTP); mailer != nil {
		notifier = mailer
	}

	validate := validator.New()
	deps := &services.Deps{
		Stores: services.Stores{
			Vendors:       repositories.NewVendorRepository(db),
			Profiles:      repositories.NewProfileRepository(db),
			Subscriptions: repositories.NewSubscriptionRepository(db),
			ServiceLinks:  repositories.NewServiceLinkRepository(db),
			Content:       repositories.NewContentRepository(db),
			ApprovalLogs:  repositories.NewApprovalLogRepository(db),
			Intents:       repositories.NewIntentRepository(db),
			Plans:         repositories.NewPlanRepository(db),
			Admins:        repositories.NewAdminRepository(db),
		},
		Logger:    log,
		Publisher: publishers,
		Reporter:  reporter,
		Notifier:  notifier,
		Validate:  validate,
	}

	blacklist := middleware.NewTokenBlacklist(redisClient)
	jwt := middleware.NewJWT(cfg.App.JWTSecret, cfg.App.TokenTTL, blacklist, log)

	plans := services.NewPlanService(deps, cfg.Workflow.PlanCacheTTL)
	auth := services.NewAuthService(deps, jwt.Generate)
	reconcile := services.NewReconcileService(deps, cfg.Workflow.IntentRetryAfter)

	if err := auth.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Error("Failed to seed admin account", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = controllers.NewCustomValidator(validate)

	rateLimiter := middleware.NewRateLimiter()

	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit("2M"))
	e.Use(security.RequireJSON())
	e.Use(middleware.CORSWithConfig(middleware.NewCORSConfig(cfg.App.CorsAllowedOrigins)))
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  !cfg.IsProduction(),
		HSTS:           cfg.IsProduction(),
	}))
	if cfg.IsProduction() {
		e.Use(httpsRedirect())
	}

	routes.SetupRoutes(e, routes.Controllers{
		Auth:         controllers.NewAuthController(auth, services.NewRegistrationService(deps), jwt, log),
		Subscription: controllers.NewSubscriptionController(services.NewSubscriptionService(deps, plans), plans, log),
		Vendor:       controllers.NewVendorController(services.NewVendorService(deps), log),
		Approval:     controllers.NewApprovalController(services.NewApprovalService(deps), log),
		Admin:        controllers.NewAdminController(auth, plans, reconcile, hub, log),
	}, jwt, log)

	go housekeeping(ctx, rateLimiter, blacklist)
	if cfg.Workflow.ReconcileInterval > 0 {
		go reconcileLoop(ctx, reconcile, cfg.Workflow.ReconcileInterval, log)
	}

	go func() {
		if err := e.Start(":" + cfg.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// housekeeping drops expired rate limiter blocks and revoked tokens
func housekeeping(ctx context.Context, rl *middleware.RateLimiter, blacklist *middleware.TokenBlacklist) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
			blacklist.Cleanup()
		}
	}
}

func reconcileLoop(ctx context.Context, reconcile *services.ReconcileService, every time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := reconcile.Run(ctx)
			if err != nil {
				log.Error("Reconcile pass failed", zap.Error(err))
				continue
			}
			log.Info("Reconcile pass finished",
				zap.Int("replayed", report.IntentsReplayed),
				zap.Int("abandoned", report.IntentsAbandoned),
				zap.Int("failed", report.IntentsFailed),
				zap.Int("vendorsApproved", report.VendorsApproved))
		}
	}
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
