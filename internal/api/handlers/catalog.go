// Package handlers implements the REST API request handlers.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/CALILU/cardtradr/internal/api/response"
	"github.com/CALILU/cardtradr/internal/tcg"
	"github.com/CALILU/cardtradr/internal/tcg/facet"
	"github.com/CALILU/cardtradr/internal/tcg/filter"
)

// CatalogClient is the slice of the card-data client the catalog handler
// needs.
type CatalogClient interface {
	ListGames(ctx context.Context) ([]tcg.Game, error)
	ListExpansions(ctx context.Context, categoryID, page int) (tcg.ExpansionPage, error)
	ListCards(ctx context.Context, groupID, page int) (tcg.CardPage, error)
	GetUsage(ctx context.Context) (tcg.Usage, error)
	CheckHealth(ctx context.Context) bool
	ClearCache(ctx context.Context) error
	SessionCalls() int64
}

// CatalogHandler serves the catalog browse and search endpoints.
type CatalogHandler struct {
	client CatalogClient
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(client CatalogClient) *CatalogHandler {
	return &CatalogHandler{client: client}
}

// ListGames returns all supported games, optionally narrowed by ?q=.
func (h *CatalogHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.client.ListGames(r.Context())
	if err != nil {
		response.ProviderError(w, err)
		return
	}
	games = filter.FilterGames(games, r.URL.Query().Get("q"))
	response.Success(w, games)
}

// ListExpansions returns one page of a game's expansions.
func (h *CatalogHandler) ListExpansions(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(chi.URLParam(r, "categoryID"))
	if err != nil {
		response.BadRequest(w, fmt.Errorf("invalid category ID"))
		return
	}

	page := queryPage(r)
	result, err := h.client.ListExpansions(r.Context(), categoryID, page)
	if err != nil {
		response.ProviderError(w, err)
		return
	}

	result.Expansions = filter.FilterExpansions(result.Expansions, r.URL.Query().Get("q"))
	response.Success(w, result)
}

// cardSearchResult is the payload for filtered card listings. Filtered and
// total counts let clients render "N of M cards" and distinguish an empty
// page from an empty filter result.
type cardSearchResult struct {
	Cards         []tcg.Card `json:"cards"`
	FilteredCards int        `json:"filteredCards"`
	TotalCards    int        `json:"totalCards"`
	TotalPages    int        `json:"totalPages"`
}

// ListCards returns one page of an expansion's cards, run through the
// filter pipeline. Query parameters: page, q (free text), rarity
// (repeatable), sort (name|number|rarity), dir (asc|desc), and f.<field>
// selections — comma-separated values, or "min..max" for a numeric range.
func (h *CatalogHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.Atoi(chi.URLParam(r, "groupID"))
	if err != nil {
		response.BadRequest(w, fmt.Errorf("invalid group ID"))
		return
	}

	result, err := h.client.ListCards(r.Context(), groupID, queryPage(r))
	if err != nil {
		response.ProviderError(w, err)
		return
	}

	query := r.URL.Query()
	fields, err := parseFieldFilters(query)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	filtered := filter.Apply(result.Cards, filter.Query{
		Text:     query.Get("q"),
		Rarities: query["rarity"],
		Fields:   fields,
		Sort:     parseSort(query),
	})

	response.Success(w, cardSearchResult{
		Cards:         filtered,
		FilteredCards: len(filtered),
		TotalCards:    len(result.Cards),
		TotalPages:    result.TotalPages,
	})
}

// facetsResult is the payload for the facet endpoint.
type facetsResult struct {
	Rarities        []string                     `json:"rarities"`
	ExtendedOptions []facet.ExtendedFilterOption `json:"extendedOptions"`
}

// GetFacets returns the filter controls derivable from one page of an
// expansion's cards.
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.Atoi(chi.URLParam(r, "groupID"))
	if err != nil {
		response.BadRequest(w, fmt.Errorf("invalid group ID"))
		return
	}

	result, err := h.client.ListCards(r.Context(), groupID, queryPage(r))
	if err != nil {
		response.ProviderError(w, err)
		return
	}

	response.Success(w, facetsResult{
		Rarities:        facet.ExtractRarities(result.Cards),
		ExtendedOptions: facet.ExtractExtendedFilterOptions(result.Cards),
	})
}

// GetUsage returns the provider's live quota snapshot plus the session
// call counter.
func (h *CatalogHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.client.GetUsage(r.Context())
	if err != nil {
		response.ProviderError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"usage":        usage,
		"sessionCalls": h.client.SessionCalls(),
	})
}

// ClearCache drops every cached provider response.
func (h *CatalogHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.client.ClearCache(r.Context()); err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseSort(query url.Values) filter.SortOption {
	opt := filter.DefaultSort()
	switch filter.SortField(query.Get("sort")) {
	case filter.SortByName:
		opt.Field = filter.SortByName
	case filter.SortByNumber:
		opt.Field = filter.SortByNumber
	case filter.SortByRarity:
		opt.Field = filter.SortByRarity
	}
	if filter.SortDirection(query.Get("dir")) == filter.Descending {
		opt.Direction = filter.Descending
	}
	return opt
}

// parseFieldFilters turns f.<field> query parameters into filter
// selections: "min..max" becomes a numeric range, anything else a
// comma-separated categorical set.
func parseFieldFilters(query url.Values) (map[string]filter.FieldFilter, error) {
	fields := make(map[string]filter.FieldFilter)
	for key, values := range query {
		name, ok := strings.CutPrefix(key, "f.")
		if !ok || len(values) == 0 {
			continue
		}
		raw := values[0]

		if lo, hi, isRange := strings.Cut(raw, ".."); isRange {
			min, err := strconv.ParseFloat(lo, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid range for field %s: %q", name, raw)
			}
			max, err := strconv.ParseFloat(hi, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid range for field %s: %q", name, raw)
			}
			if min > max {
				return nil, fmt.Errorf("invalid range for field %s: min above max", name)
			}
			fields[name] = filter.NumericRange{Min: min, Max: max}
			continue
		}

		fields[name] = filter.NewCategorical(strings.Split(raw, ",")...)
	}
	return fields, nil
}
