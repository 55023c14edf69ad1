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

// WishlistHandler serves the wishlist endpoints, scoped to the signed-in
// user.
type WishlistHandler struct {
	wishlist repository.WishlistRepository
	sessions *session.Provider
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(wishlist repository.WishlistRepository, sessions *session.Provider) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist, sessions: sessions}
}

func (h *WishlistHandler) userID(w http.ResponseWriter) (string, bool) {
	s := h.sessions.Current()
	if s == nil {
		response.Unauthorized(w, fmt.Errorf("sign in required"))
		return "", false
	}
	return s.UserID, true
}

// List returns the user's wishlist, highest priority first.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w)
	if !ok {
		return
	}

	items, err := h.wishlist.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, items)
}

// Add puts a card on the user's wishlist.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w)
	if !ok {
		return
	}

	var item repository.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	item.UserID = userID

	if err := h.wishlist.Add(r.Context(), &item); err != nil {
		response.BadRequest(w, err)
		return
	}
	response.Created(w, item)
}

// Update changes a wishlist item's priority, price cap, or notes.
func (h *WishlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	var body struct {
		Priority *int     `json:"priority"`
		MaxPrice *float64 `json:"maxPrice"`
		Notes    *string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	err := h.wishlist.Update(r.Context(), chi.URLParam(r, "itemID"), repository.WishlistUpdate{
		Priority: body.Priority,
		MaxPrice: body.MaxPrice,
		Notes:    body.Notes,
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

// Remove deletes a wishlist item.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w); !ok {
		return
	}

	err := h.wishlist.Remove(r.Context(), chi.URLParam(r, "itemID"))
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
