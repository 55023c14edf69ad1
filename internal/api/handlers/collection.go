package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CALILU/cardtradr/internal/api/response"
	"github.com/CALILU/cardtradr/internal/session"
	"github.com/CALILU/cardtradr/internal/storage/repository"
)

// CollectionHandler serves the collection CRUD endpoints. All operations
// are scoped to the signed-in user.
type CollectionHandler struct {
	collections repository.CollectionRepository
	stats       repository.StatsRepository
	sessions    *session.Provider
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(collections repository.CollectionRepository, stats repository.StatsRepository, sessions *session.Provider) *CollectionHandler {
	return &CollectionHandler{
		collections: collections,
		stats:       stats,
		sessions:    sessions,
	}
}

func (h *CollectionHandler) userID(w http.ResponseWriter) (string, bool) {
	s := h.sessions.Current()
	if s == nil {
		response.Unauthorized(w, fmt.Errorf("sign in required"))
		return "", false
	}
	return s.UserID, true
}

// ListCollections returns the user's collections.
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w)
	if !ok {
		return
	}

	collections, err := h.collections.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, collections)
}

// CreateCollection creates a collection for the user.
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w)
	if !ok {
		return
	}

	var c repository.Collection
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	c.UserID = userID

	if err := h.collections.Create(r.Context(), &c); err != nil {
		response.BadRequest(w, err)
		return
	}
	response.Created(w, c)
}

// GetCollection returns one collection by ID.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	c, err := h.collections.Get(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}
	response.Success(w, c)
}

// UpdateCollection renames or re-describes a collection.
func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	id := chi.URLParam(r, "collectionID")
	err := h.collections.Update(r.Context(), id, repository.CollectionUpdate{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

// DeleteCollection removes a collection and its cards.
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	err := h.collections.Delete(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

// ListCards returns the cards in a collection.
func (h *CollectionHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	cards, err := h.collections.ListCards(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, cards)
}

// AddCard adds a card to a collection.
func (h *CollectionHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	var card repository.CollectionCard
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	card.CollectionID = chi.URLParam(r, "collectionID")

	if err := h.collections.AddCard(r.Context(), &card); err != nil {
		response.BadRequest(w, err)
		return
	}
	response.Created(w, card)
}

// UpdateCard changes a card's quantity, condition, favorite flag, or notes.
func (h *CollectionHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	var body struct {
		Quantity   *int    `json:"quantity"`
		Condition  *string `json:"condition"`
		IsFavorite *bool   `json:"isFavorite"`
		Notes      *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	err := h.collections.UpdateCard(r.Context(), chi.URLParam(r, "cardID"), repository.CardUpdate{
		Quantity:   body.Quantity,
		Condition:  body.Condition,
		IsFavorite: body.IsFavorite,
		Notes:      body.Notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, err)
			return
		}
		response.BadRequest(w, err)
		return
	}
	response.NoContent(w)
}

// RemoveCard deletes a card from a collection.
func (h *CollectionHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	err := h.collections.RemoveCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

// GetStats returns the user's aggregate collection statistics.
func (h *CollectionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w)
	if !ok {
		return
	}

	summary, err := h.stats.Summary(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, summary)
}
