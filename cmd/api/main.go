package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/camp-registration/internal/api/http"
	"github.com/spec-kit/camp-registration/internal/api/http/handlers"
	"github.com/spec-kit/camp-registration/internal/auth"
	"github.com/spec-kit/camp-registration/internal/config"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/events"
	"github.com/spec-kit/camp-registration/internal/observability"
	"github.com/spec-kit/camp-registration/internal/payments"
	"github.com/spec-kit/camp-registration/internal/persistence"
	"github.com/spec-kit/camp-registration/internal/repository"
	"github.com/spec-kit/camp-registration/internal/service"
	"github.com/spec-kit/camp-registration/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	repos := repository.NewRepos(pool)
	txManager := repository.NewTxManager(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()

	gateways := map[domain.PaymentProvider]payments.Gateway{}
	if stripeGateway := payments.NewStripeGateway(cfg.Stripe); stripeGateway != nil {
		gateways[domain.ProviderStripe] = stripeGateway
	}
	paypalGateway, err := payments.NewPayPalGateway(cfg.PayPal)
	if err != nil {
		logger.Fatal("failed to init paypal", zap.Error(err))
	}
	if paypalGateway != nil {
		gateways[domain.ProviderPayPal] = paypalGateway
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          repos.Users,
		PasswordResetRepo: repos.PasswordResets,
	})
	userService := service.NewUserService(repos.Users, repos.Audit)
	catalogService := service.NewCatalogService(cfg.Camp, service.CatalogDependencies{
		JobCategoryRepo:   repos.JobCategories,
		JobRepo:           repos.Jobs,
		ShiftRepo:         repos.Shifts,
		CampingOptionRepo: repos.CampingOptions,
		AuditRepo:         repos.Audit,
	})
	registrationService := service.NewRegistrationService(cfg.Camp, service.RegistrationDependencies{
		RegistrationRepo:  repos.Registrations,
		SignupRepo:        repos.Signups,
		ShiftRepo:         repos.Shifts,
		JobRepo:           repos.Jobs,
		CampingOptionRepo: repos.CampingOptions,
		PaymentRepo:       repos.Payments,
		TxManager:         txManager,
		Dispatcher:        dispatcher,
	})
	paymentService := service.NewPaymentService(cfg.Camp, service.PaymentDependencies{
		PaymentRepo:      repos.Payments,
		RegistrationRepo: repos.Registrations,
		TxManager:        txManager,
		Gateways:         gateways,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		RegistrationRepo:  repos.Registrations,
		SignupRepo:        repos.Signups,
		ShiftRepo:         repos.Shifts,
		CampingOptionRepo: repos.CampingOptions,
		PaymentRepo:       repos.Payments,
		AuditRepo:         repos.Audit,
		TxManager:         txManager,
		Refunder:          paymentService,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	notificationService := service.NewNotificationService(dispatcher, repos.Notifications, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.Users)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Profile:        handlers.NewProfileHandler(userService, notificationService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Registrations:  handlers.NewRegistrationsHandler(registrationService),
		Payments:       handlers.NewPaymentsHandler(paymentService),
		Webhooks:       handlers.NewWebhooksHandler(paymentService, redis, paypalGateway, cfg.Stripe, cfg.PayPal, logger),
		Admin:          handlers.NewAdminHandler(adminService, userService, paymentService, metrics),
		AdminCatalog:   handlers.NewAdminCatalogHandler(catalogService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
