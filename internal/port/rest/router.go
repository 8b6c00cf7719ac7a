package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/metrics"
	"github.com/vaibhavvatsbhartiya/storefront/internal/service"
)

const defaultMaxUploadBytes = 5 << 20

type RouterConfig struct {
	Catalog  service.CatalogService
	Carts    service.CartService
	Orders   service.OrderService
	Users    service.UserService
	Sessions *cart.Sessions
	Metrics  *metrics.Manager
	Log      logger.Logger

	MaxUploadBytes int64
	SecureCookies  bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	products := NewProductHandler(cfg.Catalog, cfg.Log, maxUpload)
	carts := NewCartHandler(cfg.Sessions, cfg.SecureCookies, cfg.Catalog, cfg.Carts, cfg.Log)
	orders := NewOrderHandler(cfg.Sessions, cfg.SecureCookies, cfg.Orders, cfg.Log)
	users := NewUserHandler(cfg.Users, cfg.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(cfg.Log))
	if cfg.Metrics != nil {
		r.Use(Metrics(cfg.Metrics))
	}
	r.Use(Recoverer(cfg.Log))

	r.NotFound(notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed - "+r.Method+" "+r.URL.Path)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Post("/", products.Create)
		r.Get("/{id}", products.Get)
		r.Put("/{id}", products.Update)
		r.Delete("/{id}", products.Delete)
		r.Post("/{id}/image", products.UploadImage)
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", carts.Get)
		r.Delete("/", carts.Clear)
		r.Put("/items/{productId}", carts.SetItem)
		r.Delete("/items/{productId}", carts.RemoveItem)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", orders.List)
		r.Post("/", orders.Checkout)
		r.Get("/{id}", orders.Get)
		r.Get("/{id}/receipt", orders.Receipt)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", users.List)
		r.Post("/", users.Register)
		r.Get("/{id}", users.Get)
	})

	return r
}
