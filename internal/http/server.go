package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/akaza50z/libabbitak/internal/auth"
	"github.com/akaza50z/libabbitak/internal/cart"
	"github.com/akaza50z/libabbitak/internal/metrics"
	"github.com/akaza50z/libabbitak/internal/upload"
	"github.com/akaza50z/libabbitak/internal/whatsapp"
)

// Catalog joins the repository slices the handlers consume; the sqlite
// repository satisfies all of them.
type Catalog interface {
	PublicCatalog
	AdminCatalog
	ItemGetter
}

type RouterConfig struct {
	Catalog        Catalog
	Carts          *cart.Manager
	Sessions       *auth.Sessions
	LoginLimiter   *auth.LoginLimiter
	Uploader       *upload.Saver
	Formatter      *whatsapp.Formatter
	Metrics        *metrics.ServerMetrics
	CountryCode    string
	RequestTimeout time.Duration
	Log            logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) chi.Router {
	public := NewPublicHandler(cfg.Catalog)
	carts := NewCartHandler(cfg.Carts, cfg.Catalog)
	checkout := NewCheckoutHandler(cfg.Carts, cfg.Catalog, cfg.Formatter, cfg.CountryCode)
	admin := NewAdminHandler(cfg.Catalog, cfg.Sessions, cfg.LoginLimiter, cfg.Uploader, cfg.Log)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if cfg.Uploader != nil {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploader.Dir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			r.Get("/settings", public.GetSettings)
			r.Get("/categories", public.GetCategories)
			r.Get("/items", public.GetItems)
		})

		r.Group(func(r chi.Router) {
			r.Use(CartSessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Delete("/", carts.ClearCart)
				r.Post("/items", carts.AddItem)
				r.Put("/items/{lineID}", carts.UpdateQuantity)
				r.Put("/items/{lineID}/notes", carts.UpdateNotes)
				r.Delete("/items/{lineID}", carts.RemoveItem)
			})

			r.Post("/checkout", checkout.Checkout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/setup", admin.GetSetup)
			r.Post("/setup", admin.Setup)
			r.Post("/auth/login", admin.Login)
			r.Post("/auth/logout", admin.Logout)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(cfg.Sessions))

				r.Get("/account", admin.GetAccount)
				r.Put("/account", admin.UpdateAccount)
				r.Get("/settings", admin.GetSettings)
				r.Put("/settings", admin.UpdateSettings)
				r.Get("/categories", admin.GetCategories)
				r.Post("/categories", admin.CreateCategory)
				r.Put("/categories/{id}", admin.UpdateCategory)
				r.Delete("/categories/{id}", admin.DeleteCategory)
				r.Get("/items", admin.GetItems)
				r.Post("/items", admin.CreateItem)
				r.Put("/items/{id}", admin.UpdateItem)
				r.Delete("/items/{id}", admin.DeleteItem)
				r.Post("/upload", admin.Upload)
			})
		})
	})

	return r
}
