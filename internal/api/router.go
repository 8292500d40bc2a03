package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/user"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth      *AuthHandlers
	Products  *ProductHandlers
	Orders    *OrderHandlers
	Reviews   *ReviewHandlers
	Addresses *AddressHandlers
}

// NewRouter wires the storefront's HTTP surface.
func NewRouter(h Handlers, tokens *auth.TokenService, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	requireAuth := middleware.Auth(tokens)
	requireSeller := middleware.RequireRole(user.RoleSeller)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)
		r.With(requireAuth).Get("/me", h.Auth.Me)
	})

	r.With(requireAuth).Post("/user/upgrade-to-seller", h.Auth.UpgradeToSeller)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.Products.List)
		r.Get("/{id}", h.Products.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireSeller)
			r.Post("/", h.Products.Create)
			r.Put("/{id}", h.Products.Update)
			r.Delete("/{id}", h.Products.Delete)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.Orders.List)
		r.Post("/", h.Orders.Place)
		r.Patch("/{id}", h.Orders.Cancel)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/{productID}", h.Reviews.ListForProduct)
		r.With(requireAuth).Post("/", h.Reviews.Create)
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.Addresses.List)
		r.Post("/", h.Addresses.Create)
		r.Delete("/{id}", h.Addresses.Delete)
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}
