package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pmitra96/castleverde/controllers"
	auth "github.com/pmitra96/castleverde/middleware"
)

// Options configures the cross-cutting parts of the router.
type Options struct {
	AllowedOrigins []string
	APIKey         string
}

func SetupRouter(h *controllers.Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(auth.RequestLogger)
	r.Use(middleware.Recoverer)

	// CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"X-Lookup-Source"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/_healthz", h.Health)

	r.Route("/routes", func(r chi.Router) {
		r.Use(auth.APIKeyMiddleware(opts.APIKey))

		r.Post("/process-label", h.ProcessLabel)
		r.Post("/chatgpt-food-lookup", h.FoodLookup)
		r.Post("/castle-verde/calculate-index", h.CalculateIndex)

		// Session carts
		r.Post("/carts", h.CreateCart)
		r.Route("/carts/{cart_id}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.DeleteCart)
			r.Post("/items", h.AddCartItem)
			r.Delete("/items", h.ClearCart)
			r.Delete("/items/{item_id}", h.RemoveCartItem)
			r.Put("/anchor", h.SetCartAnchor)
			r.Get("/events", CartEventsSSE(h.Carts))
		})
	})

	return r
}
