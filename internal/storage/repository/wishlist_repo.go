package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WishlistUpdate carries the mutable wishlist fields; nil means leave
// unchanged.
type WishlistUpdate struct {
	Priority *int
	MaxPrice *float64
	Notes    *string
}

// WishlistRepository provides CRUD access to a user's wishlist.
type WishlistRepository interface {
	List(ctx context.Context, userID string) ([]*WishlistItem, error)
	Add(ctx context.Context, item *WishlistItem) error
	Update(ctx context.Context, id string, update WishlistUpdate) error
	Remove(ctx context.Context, id string) error
}

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a wishlist repository over the given
// database.
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) List(ctx context.Context, userID string) ([]*WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, tcg_type, card_name, priority, max_price,
		       COALESCE(notes, ''), COALESCE(cached_image_url, ''), created_at
		FROM wishlist_items WHERE user_id = ?
		ORDER BY priority DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*WishlistItem
	for rows.Next() {
		var item WishlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.TCGType,
			&item.CardName, &item.Priority, &item.MaxPrice, &item.Notes,
			&item.CachedImageURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *wishlistRepository) Add(ctx context.Context, item *WishlistItem) error {
	if item.CardName == "" {
		return fmt.Errorf("card name is required")
	}
	if item.Priority == 0 {
		item.Priority = 3
	}
	if item.Priority < 1 || item.Priority > 5 {
		return fmt.Errorf("priority must be between 1 and 5")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id, tcg_type, card_name,
			priority, max_price, notes, cached_image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.UserID, item.ProductID, item.TCGType, item.CardName,
		item.Priority, item.MaxPrice, nullable(item.Notes), nullable(item.CachedImageURL),
		item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *wishlistRepository) Update(ctx context.Context, id string, update WishlistUpdate) error {
	var (
		priority int
		maxPrice *float64
		notes    string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT priority, max_price, COALESCE(notes, '') FROM wishlist_items WHERE id = ?
	`, id).Scan(&priority, &maxPrice, &notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: wishlist item %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to get wishlist item %s: %w", id, err)
	}

	if update.Priority != nil {
		if *update.Priority < 1 || *update.Priority > 5 {
			return fmt.Errorf("priority must be between 1 and 5")
		}
		priority = *update.Priority
	}
	if update.MaxPrice != nil {
		maxPrice = update.MaxPrice
	}
	if update.Notes != nil {
		notes = *update.Notes
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE wishlist_items SET priority = ?, max_price = ?, notes = ? WHERE id = ?
	`, priority, maxPrice, nullable(notes), id)
	if err != nil {
		return fmt.Errorf("failed to update wishlist item %s: %w", id, err)
	}
	return nil
}

func (r *wishlistRepository) Remove(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM wishlist_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: wishlist item %s", ErrNotFound, id)
	}
	return nil
}
