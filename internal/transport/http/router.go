package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/greentech-platform/api/internal/application/auth"
	"github.com/greentech-platform/api/internal/application/company"
	"github.com/greentech-platform/api/internal/application/reference"
	"github.com/greentech-platform/api/internal/application/verification"
	"github.com/greentech-platform/api/internal/config"
	"github.com/greentech-platform/api/internal/infrastructure/delivery"
	"github.com/greentech-platform/api/internal/transport/http/handler"
	appmiddleware "github.com/greentech-platform/api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	gateway := delivery.NewGateway(deps.Mailer, deps.SMSSender, cfg.FrontendURL)
	codeSvc := verification.NewService(deps.CodeRepo, gateway, deps.Clock)
	authSvc := auth.NewService(codeSvc, deps.UserRepo, deps.JWTProvider, deps.Clock)
	companySvc := company.NewService(deps.CompanyRepo, deps.ReferenceRepo, deps.S3Store, deps.Clock)
	referenceSvc := reference.NewService(deps.ReferenceRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, codeSvc)
	companyH := handler.NewCompanyHandler(companySvc)
	referenceH := handler.NewReferenceHandler(referenceSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/code/email", authH.SendEmailCode)
			r.With(sensitiveRL.Limit).Post("/code/phone", authH.SendPhoneCode)
			r.With(sensitiveRL.Limit).Post("/code/verify", authH.VerifyCode)
			r.With(sensitiveRL.Limit).Post("/register/email", authH.Register)
			r.With(sensitiveRL.Limit).Post("/register/phone", authH.Register)
			r.With(sensitiveRL.Limit).Post("/login/password", authH.PasswordLogin)
			r.With(sensitiveRL.Limit).Post("/login/phone-code", authH.PhoneCodeLogin)
			r.With(sensitiveRL.Limit).Post("/password/reset", authH.ResetPassword)
			r.Post("/refresh", authH.Refresh)
			r.Get("/check-account", authH.CheckAccount)
		})

		r.Get("/reference/countries", referenceH.Countries)
		r.Get("/reference/provinces", referenceH.Provinces)
		r.Get("/reference/economic-zones", referenceH.EconomicZones)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", authH.Me)
			r.Post("/auth/logout", authH.Logout)

			r.Route("/company/profile", func(r chi.Router) {
				r.Post("/", companyH.Submit)
				r.Get("/", companyH.Get)
				r.Put("/", companyH.Update)
				r.Post("/logo", companyH.UploadLogo)
			})
		})
	})

	return r
}
