package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dairylicious/dairyshop-backend/api/controllers"
	"github.com/dairylicious/dairyshop-backend/api/middleware"
	authsvc "github.com/dairylicious/dairyshop-backend/internal/auth"
	cartsvc "github.com/dairylicious/dairyshop-backend/internal/cart"
	chatsvc "github.com/dairylicious/dairyshop-backend/internal/chatbot"
	ordersvc "github.com/dairylicious/dairyshop-backend/internal/orders"
	products "github.com/dairylicious/dairyshop-backend/internal/products"
	"github.com/dairylicious/dairyshop-backend/pkg/auth/session"
	"github.com/dairylicious/dairyshop-backend/pkg/config"
	"github.com/dairylicious/dairyshop-backend/pkg/db"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	"github.com/dairylicious/dairyshop-backend/pkg/logger"
	"github.com/dairylicious/dairyshop-backend/pkg/metrics"
	"github.com/dairylicious/dairyshop-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             *db.Client
	Redis          *redis.Client
	SessionManager session.AccessSessionChecker
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics

	AuthService    authsvc.Service
	ProductService products.Service
	CartService    cartsvc.Service
	OrderService   ordersvc.Service
	ChatbotService chatsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.HealthDeps(deps.DB, deps.Redis)))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.ProductService, logg))
			r.Get("/featured", controllers.ProductsFeatured(deps.ProductService, logg))
			r.Get("/categories", controllers.ProductCategories(deps.ProductService, logg))
			r.Get("/search", controllers.ProductsSearch(deps.ProductService, logg))
			r.Get("/category/{category}", controllers.ProductsByCategory(deps.ProductService, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.ProductService, logg))
		})

		r.Route("/chatbot", func(r chi.Router) {
			r.Get("/suggestions", controllers.ChatbotSuggestions(deps.ChatbotService, logg))
			r.With(middleware.OptionalAuth(cfg.JWT, deps.SessionManager, logg)).
				Post("/message", controllers.ChatbotMessage(deps.ChatbotService, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
			r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(middleware.RateLimit(cfg.APIRateLimit, deps.Redis, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.CartService, logg))
				r.Delete("/", controllers.CartClear(deps.CartService, logg))
				r.Get("/count", controllers.CartCount(deps.CartService, logg))
				r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
				r.Put("/items/{productId}", controllers.CartUpdateItem(deps.CartService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(deps.OrderService, logg))
				r.Get("/", controllers.OrdersList(deps.OrderService, logg))
				r.Get("/{orderId}", controllers.OrderGet(deps.OrderService, logg))
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.ProfileGet(deps.AuthService, logg))
				r.Put("/", controllers.ProfileUpdate(deps.AuthService, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

				r.Route("/products", func(r chi.Router) {
					r.Post("/", controllers.AdminCreateProduct(deps.ProductService, logg))
					r.Patch("/{productId}", controllers.AdminUpdateProduct(deps.ProductService, logg))
					r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.ProductService, logg))
				})

				r.Patch("/orders/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.OrderService, logg))
			})
		})
	})

	return r
}
