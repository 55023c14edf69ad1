package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// GameCount is the quantity-weighted card count for one game.
type GameCount struct {
	TCGType string `json:"tcgType"`
	Cards   int    `json:"cards"`
}

// Summary aggregates a user's collections and wishlist.
type Summary struct {
	Collections   int         `json:"collections"`
	TotalCards    int         `json:"totalCards"`
	DistinctGames int         `json:"distinctGames"`
	Favorites     int         `json:"favorites"`
	WishlistItems int         `json:"wishlistItems"`
	PerGame       []GameCount `json:"perGame"`
}

// StatsRepository computes aggregate statistics across a user's data.
type StatsRepository interface {
	Summary(ctx context.Context, userID string) (*Summary, error)
}

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a stats repository over the given database.
func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Summary(ctx context.Context, userID string) (*Summary, error) {
	var s Summary

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT tcg_type) FROM collections WHERE user_id = ?
	`, userID).Scan(&s.Collections, &s.DistinctGames)
	if err != nil {
		return nil, fmt.Errorf("failed to count collections: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(cc.quantity), 0),
		       COALESCE(SUM(CASE WHEN cc.is_favorite THEN 1 ELSE 0 END), 0)
		FROM collection_cards cc
		JOIN collections c ON c.id = cc.collection_id
		WHERE c.user_id = ?
	`, userID).Scan(&s.TotalCards, &s.Favorites)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM wishlist_items WHERE user_id = ?
	`, userID).Scan(&s.WishlistItems)
	if err != nil {
		return nil, fmt.Errorf("failed to count wishlist: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.tcg_type, COALESCE(SUM(cc.quantity), 0)
		FROM collections c
		LEFT JOIN collection_cards cc ON cc.collection_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.tcg_type
		ORDER BY 2 DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count per game: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var gc GameCount
		if err := rows.Scan(&gc.TCGType, &gc.Cards); err != nil {
			return nil, fmt.Errorf("failed to scan per-game count: %w", err)
		}
		s.PerGame = append(s.PerGame, gc)
	}
	return &s, rows.Err()
}
