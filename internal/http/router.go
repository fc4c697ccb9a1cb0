package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	AllowedOrigins     []string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

type Handlers struct {
	Users    *UserHandler
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrdersHandler
}

// NewRouter wires every route under /api plus /health.
func NewRouter(cfg RouterConfig, h Handlers, tokens TokenVerifier, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", csrfHeader, middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authenticated := Authenticate(tokens)
	csrf := RequireCSRF(tokens)

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limitBody(cfg.MaxRequestBodySize))
				r.Post("/register", h.Users.Register)
				r.Post("/login", h.Users.Login)
				r.Post("/admin", h.Users.AdminLogin)
				r.Post("/google", h.Users.GoogleLogin)
				r.Get("/verify-email", h.Users.VerifyEmail)
				r.Post("/forgot-password", h.Users.ForgotPassword)
				r.Post("/reset-password", h.Users.ResetPassword)
			})
			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Get("/csrf-token", h.Users.CSRFToken)
				r.Get("/profile", h.Users.Profile)
			})
		})

		r.Route("/product", func(r chi.Router) {
			r.Get("/list", h.Products.List)
			r.Group(func(r chi.Router) {
				r.Use(authenticated, csrf, RequireAdmin)
				// Multipart bodies are capped by the handler
				r.Post("/add", h.Products.Add)
				r.With(limitBody(cfg.MaxRequestBodySize)).Post("/update", h.Products.Update)
				r.With(limitBody(cfg.MaxRequestBodySize)).Post("/remove", h.Products.Remove)
			})
			r.With(authenticated, csrf, limitBody(cfg.MaxRequestBodySize)).Post("/review", h.Products.Review)
			r.Get("/{id}", h.Products.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticated, csrf, limitBody(cfg.MaxRequestBodySize))
			r.Get("/", h.Cart.GetCart)
			r.Post("/add", h.Cart.AddItem)
			r.Post("/update", h.Cart.UpdateQuantity)
			r.Post("/remove", h.Cart.RemoveItem)
			r.Post("/merge", h.Cart.Merge)
		})

		r.Route("/order", func(r chi.Router) {
			r.Use(authenticated, csrf, limitBody(cfg.MaxRequestBodySize))
			r.Post("/place", h.Orders.PlaceCOD)
			r.Post("/stripe", h.Orders.PlaceStripe)
			r.Post("/verifyStripe", h.Orders.VerifyStripe)
			r.Get("/userorders", h.Orders.ListOrders)
			r.Post("/userorders", h.Orders.ListOrders)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/list", h.Orders.ListAll)
				r.Post("/status", h.Orders.UpdateStatus)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
