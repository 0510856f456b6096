package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/http/handlers"
	"ecommerce-api/internal/http/middleware"
	"ecommerce-api/internal/http/middleware/ratelimit"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/metrics"
)

const requestTimeout = 15 * time.Second

// Deps lists everything the router mounts.
type Deps struct {
	Logger   logx.Logger
	Verifier middleware.TokenVerifier

	Base       *handlers.Handlers
	Categories *handlers.CategoryHandler
	Products   *handlers.ProductHandler
	Images     *handlers.ImageHandler
	Users      *handlers.UserHandler
	Accounts   *handlers.AccountHandler
	Coupons    *handlers.CouponHandler
	Orders     *handlers.OrderHandler

	// Limiter guards the API, AuthLimiter the stricter /v1/auth group.
	Limiter     *ratelimit.Middleware
	AuthLimiter *ratelimit.Middleware

	// Uploads serves stored images under /uploads. Nil for remote storage.
	Uploads http.Handler
	Metrics http.Handler
	// HTTPMetrics is optional; without it requests are only logged.
	HTTPMetrics *metrics.HTTP
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = logx.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observability(logger, d.HTTPMetrics))
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	if d.Uploads != nil {
		r.Method(http.MethodGet, "/uploads/*", http.StripPrefix("/uploads/", d.Uploads))
	}
	r.NotFound(http.HandlerFunc(d.Base.NotFound))
	r.MethodNotAllowed(http.HandlerFunc(d.Base.MethodNotAllowed))

	identify := middleware.Identify(d.Verifier, logger)
	requireAuth := middleware.RequireAuth(d.Verifier, logger)
	limit := limiterOf(d.Limiter)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Paginate)

		r.Route("/auth", func(r chi.Router) {
			r.Use(limiterOf(d.AuthLimiter))
			r.Post("/register", d.Accounts.Register)
			r.Post("/login", d.Accounts.Login)
			r.Post("/refresh", d.Accounts.Refresh)
			r.Post("/forgot", d.Accounts.Forgot)
			r.Get("/remember/{token}", d.Accounts.Remember)
			r.Post("/reset", d.Accounts.Reset)
			r.With(requireAuth).Post("/logout", d.Accounts.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Get("/products", d.Products.Catalog)
			r.Get("/products/{id}", d.Products.Get)
		})

		// limit runs before the 401 so anonymous floods are bucketed by IP
		r.Group(func(r chi.Router) {
			r.Use(identify, limit, requireAuth)
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", d.Orders.ListOwn)
				r.Post("/", d.Orders.CreateOwn)
				r.Get("/{id}", d.Orders.GetOwn)
				r.Put("/{id}", d.Orders.UpdateOwn)
				r.Post("/{id}/discount", d.Orders.ApplyDiscountOwn)
				r.Delete("/{id}/discount", d.Orders.RemoveDiscountOwn)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(identify, limit, requireAuth, middleware.RequireRoles(logger, domain.RoleAdmin, domain.RoleManager))
			mountAdmin(r, d)
		})
	})

	return r
}

func mountAdmin(r chi.Router, d Deps) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", d.Categories.List)
		r.Post("/", d.Categories.Create)
		r.Get("/{id}", d.Categories.Get)
		r.Put("/{id}", d.Categories.Update)
		r.Delete("/{id}", d.Categories.Delete)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", d.Products.List)
		r.Post("/", d.Products.Create)
		r.Get("/{id}", d.Products.Get)
		r.Put("/{id}", d.Products.Update)
		r.Delete("/{id}", d.Products.Delete)
	})
	r.Route("/images", func(r chi.Router) {
		r.Get("/", d.Images.List)
		r.Post("/", d.Images.Upload)
		r.Get("/{id}", d.Images.Get)
		r.Put("/{id}", d.Images.Rename)
		r.Delete("/{id}", d.Images.Delete)
	})
	r.Route("/users", func(r chi.Router) {
		r.Get("/", d.Users.List)
		r.Post("/", d.Users.Create)
		r.Get("/{id}", d.Users.Get)
		r.Put("/{id}", d.Users.Update)
		r.Delete("/{id}", d.Users.Delete)
	})
	r.Route("/coupons", func(r chi.Router) {
		r.Get("/", d.Coupons.List)
		r.Post("/", d.Coupons.Create)
		r.Get("/{id}", d.Coupons.Get)
		r.Put("/{id}", d.Coupons.Update)
		r.Delete("/{id}", d.Coupons.Delete)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", d.Orders.List)
		r.Post("/", d.Orders.Create)
		r.Get("/{id}", d.Orders.Get)
		r.Put("/{id}", d.Orders.Update)
		r.Delete("/{id}", d.Orders.Delete)
		r.Post("/{id}/discount", d.Orders.ApplyDiscount)
		r.Delete("/{id}/discount", d.Orders.RemoveDiscount)
	})
}

func limiterOf(m *ratelimit.Middleware) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m.Handler()
}
