package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// CollectionUpdate carries the mutable collection fields; nil means leave
// unchanged.
type CollectionUpdate struct {
	Name        *string
	Description *string
}

// CardUpdate carries the mutable collection-card fields; nil means leave
// unchanged.
type CardUpdate struct {
	Quantity   *int
	Condition  *string
	IsFavorite *bool
	Notes      *string
}

// CollectionRepository provides CRUD access to collections and the cards
// within them, scoped to a user.
type CollectionRepository interface {
	List(ctx context.Context, userID string) ([]*Collection, error)
	Get(ctx context.Context, id string) (*Collection, error)
	Create(ctx context.Context, c *Collection) error
	Update(ctx context.Context, id string, update CollectionUpdate) error
	Delete(ctx context.Context, id string) error

	ListCards(ctx context.Context, collectionID string) ([]*CollectionCard, error)
	AddCard(ctx context.Context, card *CollectionCard) error
	UpdateCard(ctx context.Context, id string, update CardUpdate) error
	RemoveCard(ctx context.Context, id string) error
}

type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a collection repository over the given
// database.
func NewCollectionRepository(db *sql.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) List(ctx context.Context, userID string) ([]*Collection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, tcg_type, name, COALESCE(description, ''), is_default, created_at
		FROM collections WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var collections []*Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.UserID, &c.TCGType, &c.Name, &c.Description, &c.IsDefault, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, &c)
	}
	return collections, rows.Err()
}

func (r *collectionRepository) Get(ctx context.Context, id string) (*Collection, error) {
	var c Collection
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, tcg_type, name, COALESCE(description, ''), is_default, created_at
		FROM collections WHERE id = ?
	`, id).Scan(&c.ID, &c.UserID, &c.TCGType, &c.Name, &c.Description, &c.IsDefault, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get collection %s: %w", id, err)
	}
	return &c, nil
}

func (r *collectionRepository) Create(ctx context.Context, c *Collection) error {
	if c.Name == "" {
		return fmt.Errorf("collection name is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO collections (id, user_id, tcg_type, name, description, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.TCGType, c.Name, nullable(c.Description), c.IsDefault, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) Update(ctx context.Context, id string, update CollectionUpdate) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if update.Name != nil {
		current.Name = *update.Name
	}
	if update.Description != nil {
		current.Description = *update.Description
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE collections SET name = ?, description = ? WHERE id = ?
	`, current.Name, nullable(current.Description), id)
	if err != nil {
		return fmt.Errorf("failed to update collection %s: %w", id, err)
	}
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	// Cards cascade via the foreign key.
	result, err := r.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: collection %s", ErrNotFound, id)
	}
	return nil
}

func (r *collectionRepository) ListCards(ctx context.Context, collectionID string) ([]*CollectionCard, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, collection_id, product_id, card_name, COALESCE(set_name, ''), quantity,
		       condition, language, is_foil, is_favorite, COALESCE(notes, ''),
		       acquired_price, COALESCE(cached_image_url, ''), created_at, updated_at
		FROM collection_cards WHERE collection_id = ? ORDER BY created_at DESC
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*CollectionCard
	for rows.Next() {
		var c CollectionCard
		if err := rows.Scan(&c.ID, &c.CollectionID, &c.ProductID, &c.CardName, &c.SetName,
			&c.Quantity, &c.Condition, &c.Language, &c.IsFoil, &c.IsFavorite, &c.Notes,
			&c.AcquiredPrice, &c.CachedImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection card: %w", err)
		}
		cards = append(cards, &c)
	}
	return cards, rows.Err()
}

func (r *collectionRepository) AddCard(ctx context.Context, card *CollectionCard) error {
	if card.CollectionID == "" {
		return fmt.Errorf("collection ID is required")
	}
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.Quantity <= 0 {
		card.Quantity = 1
	}
	if card.Condition == "" {
		card.Condition = ConditionNearMint
	}
	if card.Language == "" {
		card.Language = "English"
	}
	now := time.Now()
	card.CreatedAt = now
	card.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO collection_cards (id, collection_id, product_id, card_name, set_name,
			quantity, condition, language, is_foil, is_favorite, notes, acquired_price,
			cached_image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, card.ID, card.CollectionID, card.ProductID, card.CardName, nullable(card.SetName),
		card.Quantity, card.Condition, card.Language, card.IsFoil, card.IsFavorite,
		nullable(card.Notes), card.AcquiredPrice, nullable(card.CachedImageURL),
		card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add card to collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) UpdateCard(ctx context.Context, id string, update CardUpdate) error {
	var c CollectionCard
	err := r.db.QueryRowContext(ctx, `
		SELECT quantity, condition, is_favorite, COALESCE(notes, '')
		FROM collection_cards WHERE id = ?
	`, id).Scan(&c.Quantity, &c.Condition, &c.IsFavorite, &c.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: collection card %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to get collection card %s: %w", id, err)
	}

	if update.Quantity != nil {
		if *update.Quantity <= 0 {
			return fmt.Errorf("quantity must be positive")
		}
		c.Quantity = *update.Quantity
	}
	if update.Condition != nil {
		c.Condition = *update.Condition
	}
	if update.IsFavorite != nil {
		c.IsFavorite = *update.IsFavorite
	}
	if update.Notes != nil {
		c.Notes = *update.Notes
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE collection_cards
		SET quantity = ?, condition = ?, is_favorite = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, c.Quantity, c.Condition, c.IsFavorite, nullable(c.Notes), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update collection card %s: %w", id, err)
	}
	return nil
}

func (r *collectionRepository) RemoveCard(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM collection_cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove collection card %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: collection card %s", ErrNotFound, id)
	}
	return nil
}

// nullable maps the empty string to NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
