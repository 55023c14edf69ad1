package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CALILU/cardtradr/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Catalog routes
		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.catalogHandler.ListGames)
			r.Get("/{categoryID}/expansions", s.catalogHandler.ListExpansions)
		})
		r.Route("/expansions", func(r chi.Router) {
			r.Get("/{groupID}/cards", s.catalogHandler.ListCards)
			r.Get("/{groupID}/facets", s.catalogHandler.GetFacets)
		})
		r.Get("/usage", s.catalogHandler.GetUsage)
		r.Delete("/cache", s.catalogHandler.ClearCache)
		r.Get("/stats", s.collectionHandler.GetStats)

		// Collection routes
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", s.collectionHandler.ListCollections)
			r.Post("/", s.collectionHandler.CreateCollection)
			r.Get("/{collectionID}", s.collectionHandler.GetCollection)
			r.Put("/{collectionID}", s.collectionHandler.UpdateCollection)
			r.Delete("/{collectionID}", s.collectionHandler.DeleteCollection)
			r.Get("/{collectionID}/cards", s.collectionHandler.ListCards)
			r.Post("/{collectionID}/cards", s.collectionHandler.AddCard)
			r.Put("/{collectionID}/cards/{cardID}", s.collectionHandler.UpdateCard)
			r.Delete("/{collectionID}/cards/{cardID}", s.collectionHandler.RemoveCard)
		})

		// Wishlist routes
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", s.wishlistHandler.List)
			r.Post("/", s.wishlistHandler.Add)
			r.Put("/{itemID}", s.wishlistHandler.Update)
			r.Delete("/{itemID}", s.wishlistHandler.Remove)
		})

		// System routes
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandler.GetStatus)
			r.Get("/version", s.systemHandler.GetVersion)
		})

		// Session routes
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.systemHandler.GetSession)
			r.Post("/", s.systemHandler.SignIn)
			r.Delete("/", s.systemHandler.SignOut)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "cardtradr-api",
	})
}
