// Package repository provides SQLite-backed access to the user's
// collections, wishlist, and settings.
package repository

import "time"

// Card conditions accepted by the collection tables.
const (
	ConditionNearMint         = "near_mint"
	ConditionLightlyPlayed    = "lightly_played"
	ConditionModeratelyPlayed = "moderately_played"
	ConditionHeavilyPlayed    = "heavily_played"
	ConditionDamaged          = "damaged"
)

// Collection is a named group of owned cards for one game.
type Collection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	TCGType     string    `json:"tcgType"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CollectionCard is one owned card within a collection. Catalog data worth
// showing offline (name, image) is denormalized onto the row.
type CollectionCard struct {
	ID             string    `json:"id"`
	CollectionID   string    `json:"collectionId"`
	ProductID      int       `json:"productId"`
	CardName       string    `json:"cardName"`
	SetName        string    `json:"setName,omitempty"`
	Quantity       int       `json:"quantity"`
	Condition      string    `json:"condition"`
	Language       string    `json:"language"`
	IsFoil         bool      `json:"isFoil"`
	IsFavorite     bool      `json:"isFavorite"`
	Notes          string    `json:"notes,omitempty"`
	AcquiredPrice  *float64  `json:"acquiredPrice,omitempty"`
	CachedImageURL string    `json:"cachedImageUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// WishlistItem is a card the user wants, with a 1 (low) to 5 (high)
// priority.
type WishlistItem struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ProductID      int       `json:"productId"`
	TCGType        string    `json:"tcgType"`
	CardName       string    `json:"cardName"`
	Priority       int       `json:"priority"`
	MaxPrice       *float64  `json:"maxPrice,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CachedImageURL string    `json:"cachedImageUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
