package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/itanishqshelar/Flashfits-AI/internal/analytics"
	"github.com/itanishqshelar/Flashfits-AI/internal/cartstore"
	"github.com/itanishqshelar/Flashfits-AI/internal/catalog"
	"github.com/itanishqshelar/Flashfits-AI/internal/middleware"
	"github.com/itanishqshelar/Flashfits-AI/internal/session"
)

type Deps struct {
	Logger           *zap.Logger
	CORSAllowOrigins []string

	Sessions   *session.Registry
	Catalog    catalog.Repository
	SavedCarts cartstore.Repository
	Analytics  analytics.Repository
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(d.CORSAllowOrigins))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.UserID)

	r.Get("/health", Health)

	sessions := NewSessionHandler(d.Sessions, d.Catalog, logger)
	r.Post("/api/sessions", sessions.CreateSession)
	r.Route("/api/sessions/{sessionId}/cart", func(r chi.Router) {
		r.Get("/", sessions.GetCart)
		r.Delete("/", sessions.ClearCart)
		r.Post("/items", sessions.AddItem)
		r.Patch("/items/{id}", sessions.UpdateItem)
		r.Delete("/items/{id}", sessions.RemoveItem)
		r.Patch("/lines", sessions.UpdateLine)
		r.Delete("/lines", sessions.RemoveLine)
		r.Post("/products/{productId}", sessions.AddProduct)
	})

	saved := NewSavedCartHandler(d.SavedCarts, logger)
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.RequireUserID)
		r.Get("/", saved.List)
		r.Post("/", saved.Add)
	})

	products := NewCatalogHandler(d.Catalog, logger)
	r.Get("/api/products", products.ListProducts)
	r.Get("/api/products/{id}", products.GetProduct)

	tracker := NewAnalyticsHandler(d.Analytics, d.Sessions, logger)
	r.Post("/api/analytics/track", tracker.Track)

	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "storefront-cart"})
}
