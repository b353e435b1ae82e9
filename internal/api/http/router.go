package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/camp-registration/internal/api/http/handlers"
	"github.com/spec-kit/camp-registration/internal/auth"
	"github.com/spec-kit/camp-registration/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Profile        *handlers.ProfileHandler
	Catalog        *handlers.CatalogHandler
	Registrations  *handlers.RegistrationsHandler
	Payments       *handlers.PaymentsHandler
	Webhooks       *handlers.WebhooksHandler
	Admin          *handlers.AdminHandler
	AdminCatalog   *handlers.AdminCatalogHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Users.ChangePassword)

	app.Get("/camp/config", cfg.Catalog.GetCatalog)

	// provider callbacks, authenticated by signature instead of JWT
	webhooks := app.Group("/webhooks")
	webhooks.Post("/stripe", cfg.Webhooks.Stripe)
	webhooks.Post("/paypal", cfg.Webhooks.PayPal)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	me.Get("/", cfg.Profile.GetProfile)
	me.Patch("/", cfg.Profile.UpdateProfile)
	me.Get("/notifications", cfg.Profile.ListNotifications)

	registrations := app.Group("/registrations", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	registrations.Post("/", cfg.Registrations.Create)
	registrations.Get("/me", cfg.Registrations.GetMine)

	payments := app.Group("/payments", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	payments.Post("/", cfg.Payments.Start)
	payments.Get("/me", cfg.Payments.ListMine)
	payments.Post("/:id/capture", cfg.Payments.Capture)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/registrations", cfg.Admin.ListRegistrations)
	admin.Get("/registrations/:id", cfg.Admin.GetRegistration)
	admin.Put("/registrations/:id", cfg.Admin.UpdateRegistration)
	admin.Post("/registrations/:id/cancel", cfg.Admin.CancelRegistration)
	admin.Post("/payments/:id/refund", cfg.Admin.RefundPayment)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/users/:id", cfg.Admin.GetUser)
	admin.Put("/users/:id", cfg.Admin.UpdateUser)
	admin.Get("/audit", cfg.Admin.ListAudit)
	admin.Get("/stats", cfg.Admin.Stats)

	admin.Post("/job-categories", cfg.AdminCatalog.CreateJobCategory)
	admin.Put("/job-categories/:id", cfg.AdminCatalog.UpdateJobCategory)
	admin.Delete("/job-categories/:id", cfg.AdminCatalog.DeleteJobCategory)
	admin.Post("/jobs", cfg.AdminCatalog.CreateJob)
	admin.Put("/jobs/:id", cfg.AdminCatalog.UpdateJob)
	admin.Delete("/jobs/:id", cfg.AdminCatalog.DeleteJob)
	admin.Post("/shifts", cfg.AdminCatalog.CreateShift)
	admin.Put("/shifts/:id", cfg.AdminCatalog.UpdateShift)
	admin.Delete("/shifts/:id", cfg.AdminCatalog.DeleteShift)
	admin.Post("/camping-options", cfg.AdminCatalog.CreateCampingOption)
	admin.Put("/camping-options/:id", cfg.AdminCatalog.UpdateCampingOption)
	admin.Patch("/camping-options/:id", cfg.AdminCatalog.SetCampingOptionEnabled)
	admin.Delete("/camping-options/:id", cfg.AdminCatalog.DeleteCampingOption)
}
