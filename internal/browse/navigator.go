// Package browse owns the three-level drill-down state machine over the
// catalog: games, then a game's expansions, then an expansion's cards.
// Filter selections are scoped to one expansion's result set and are
// cleared on every transition in or out of the cards level.
package browse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/CALILU/cardtradr/internal/tcg"
	"github.com/CALILU/cardtradr/internal/tcg/facet"
	"github.com/CALILU/cardtradr/internal/tcg/filter"
)

// Level is the current browse depth.
type Level int

// Browse levels, root first. Going back always returns one level toward
// Games, never skips.
const (
	LevelGames Level = iota
	LevelExpansions
	LevelCards
)

func (l Level) String() string {
	switch l {
	case LevelGames:
		return "games"
	case LevelExpansions:
		return "expansions"
	case LevelCards:
		return "cards"
	default:
		return "unknown"
	}
}

// Catalog is the slice of the card-data client the navigator needs.
type Catalog interface {
	ListGames(ctx context.Context) ([]tcg.Game, error)
	ListExpansions(ctx context.Context, categoryID, page int) (tcg.ExpansionPage, error)
	ListCards(ctx context.Context, groupID, page int) (tcg.CardPage, error)
}

// Navigator tracks the user's browse position and the filter state scoped
// to it. Safe for concurrent use; fetches that complete after a level
// transition are discarded rather than applied to the newer selection.
type Navigator struct {
	catalog Catalog
	logger  *slog.Logger

	mu    sync.Mutex
	level Level
	// gen is bumped on every transition. A fetch captures the generation
	// it started under; results from an older generation are dropped.
	gen uint64

	games             []tcg.Game
	selectedGame      *tcg.Game
	expansions        []tcg.Expansion
	expansionPages    int
	expansionTotal    int
	selectedExpansion *tcg.Expansion
	cards             []tcg.Card
	cardPages         int
	cardTotal         int

	search      string
	rarities    []string
	fields      map[string]filter.FieldFilter
	sort        filter.SortOption
	showFilters bool
}

// New creates a navigator at the Games level.
func New(catalog Catalog, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		catalog: catalog,
		logger:  logger,
		level:   LevelGames,
		fields:  make(map[string]filter.FieldFilter),
		sort:    filter.DefaultSort(),
	}
}

// Load fetches the games list. Call once after construction.
func (n *Navigator) Load(ctx context.Context) error {
	games, err := n.catalog.ListGames(ctx)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.games = games
	n.mu.Unlock()
	return nil
}

// SelectGame descends from Games to Expansions. The free-text query is
// cleared and pagination restarts at page 1.
func (n *Navigator) SelectGame(ctx context.Context, categoryID int) error {
	n.mu.Lock()
	var game *tcg.Game
	for i := range n.games {
		if n.games[i].CategoryID == categoryID {
			game = &n.games[i]
			break
		}
	}
	if game == nil {
		n.mu.Unlock()
		return fmt.Errorf("unknown game %d", categoryID)
	}

	n.gen++
	gen := n.gen
	n.level = LevelExpansions
	n.selectedGame = game
	n.selectedExpansion = nil
	n.expansions = nil
	n.expansionPages = 0
	n.search = ""
	n.mu.Unlock()

	return n.fetchExpansions(ctx, gen, categoryID, 1)
}

// SelectExpansion descends from Expansions to Cards. The free-text query,
// rarity and extended-data selections, and filter visibility are all
// cleared: they are meaningless across expansions with different facets.
func (n *Navigator) SelectExpansion(ctx context.Context, groupID int) error {
	n.mu.Lock()
	var expansion *tcg.Expansion
	for i := range n.expansions {
		if n.expansions[i].GroupID == groupID {
			expansion = &n.expansions[i]
			break
		}
	}
	if expansion == nil {
		n.mu.Unlock()
		return fmt.Errorf("unknown expansion %d", groupID)
	}

	n.gen++
	gen := n.gen
	n.level = LevelCards
	n.selectedExpansion = expansion
	n.cards = nil
	n.cardPages = 0
	n.search = ""
	n.clearCardFiltersLocked()
	n.mu.Unlock()

	return n.fetchCards(ctx, gen, groupID, 1)
}

// GoBack returns one level toward Games, clearing the abandoned level's
// selection and any card-scoped filter state.
func (n *Navigator) GoBack(ctx context.Context) error {
	n.mu.Lock()
	switch n.level {
	case LevelCards:
		n.gen++
		gen := n.gen
		n.level = LevelExpansions
		n.selectedExpansion = nil
		n.cards = nil
		n.cardPages = 0
		n.search = ""
		n.clearCardFiltersLocked()
		categoryID := n.selectedGame.CategoryID
		n.expansions = nil
		n.expansionPages = 0
		n.mu.Unlock()
		return n.fetchExpansions(ctx, gen, categoryID, 1)
	case LevelExpansions:
		n.gen++
		n.level = LevelGames
		n.selectedGame = nil
		n.expansions = nil
		n.expansionPages = 0
		n.search = ""
		n.mu.Unlock()
		return nil
	default:
		n.mu.Unlock()
		return nil
	}
}

// LoadMore fetches and appends the next page at the current level
// ("load more", not a windowed viewport). No-op at the Games level or when
// the last page is already loaded.
func (n *Navigator) LoadMore(ctx context.Context) error {
	n.mu.Lock()
	gen := n.gen
	switch n.level {
	case LevelExpansions:
		if n.selectedGame == nil || n.expansionPages >= n.expansionTotal {
			n.mu.Unlock()
			return nil
		}
		categoryID := n.selectedGame.CategoryID
		page := n.expansionPages + 1
		n.mu.Unlock()
		return n.fetchExpansions(ctx, gen, categoryID, page)
	case LevelCards:
		if n.selectedExpansion == nil || n.cardPages >= n.cardTotal {
			n.mu.Unlock()
			return nil
		}
		groupID := n.selectedExpansion.GroupID
		page := n.cardPages + 1
		n.mu.Unlock()
		return n.fetchCards(ctx, gen, groupID, page)
	default:
		n.mu.Unlock()
		return nil
	}
}

func (n *Navigator) fetchExpansions(ctx context.Context, gen uint64, categoryID, page int) error {
	result, err := n.catalog.ListExpansions(ctx, categoryID, page)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.gen != gen {
		n.logger.Debug("dropping stale expansions fetch", "categoryID", categoryID, "page", page)
		return nil
	}
	n.expansions = append(n.expansions, result.Expansions...)
	n.expansionPages = page
	n.expansionTotal = result.TotalPages
	return nil
}

func (n *Navigator) fetchCards(ctx context.Context, gen uint64, groupID, page int) error {
	result, err := n.catalog.ListCards(ctx, groupID, page)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.gen != gen {
		n.logger.Debug("dropping stale cards fetch", "groupID", groupID, "page", page)
		return nil
	}
	n.cards = append(n.cards, result.Cards...)
	n.cardPages = page
	n.cardTotal = result.TotalPages
	return nil
}

// clearCardFiltersLocked resets the selections scoped to one expansion.
// Caller holds n.mu.
func (n *Navigator) clearCardFiltersLocked() {
	n.rarities = nil
	n.fields = make(map[string]filter.FieldFilter)
	n.showFilters = false
}

// Search sets the free-text query for the current level.
func (n *Navigator) Search(text string) {
	n.mu.Lock()
	n.search = text
	n.mu.Unlock()
}

// SetSort sets the sort option. Sort preference persists across levels.
func (n *Navigator) SetSort(opt filter.SortOption) {
	n.mu.Lock()
	n.sort = opt
	n.mu.Unlock()
}

// SetRarities replaces the rarity selection.
func (n *Navigator) SetRarities(rarities []string) {
	n.mu.Lock()
	n.rarities = rarities
	n.mu.Unlock()
}

// SetFieldFilter sets the selection for one extended-data field. A nil
// filter clears the field.
func (n *Navigator) SetFieldFilter(field string, f filter.FieldFilter) {
	n.mu.Lock()
	if f == nil {
		delete(n.fields, field)
	} else {
		n.fields[field] = f
	}
	n.mu.Unlock()
}

// SetShowFilters toggles the filter panel visibility state.
func (n *Navigator) SetShowFilters(show bool) {
	n.mu.Lock()
	n.showFilters = show
	n.mu.Unlock()
}

// View is a snapshot of the navigator for rendering: the filtered items at
// the current level plus the facet options derived from the loaded cards.
type View struct {
	Level      Level
	Breadcrumb []string

	Games      []tcg.Game
	Expansions []tcg.Expansion
	Cards      []tcg.Card

	// TotalCards is the size of the unfiltered card list; FilteredCards
	// the size after the pipeline. The two let the UI distinguish "no
	// data at all" from "no results under current filters".
	TotalCards    int
	FilteredCards int
	ActiveFilters bool

	Rarities        []string
	ExtendedOptions []facet.ExtendedFilterOption

	PagesLoaded int
	TotalPages  int
	Sort        filter.SortOption
	ShowFilters bool
}

// ResultsCounter renders the "N of M cards" label: the filtered count is
// shown only while filters narrow the list.
func (v View) ResultsCounter() string {
	if v.ActiveFilters || v.FilteredCards != v.TotalCards {
		return fmt.Sprintf("%d of %d cards", v.FilteredCards, v.TotalCards)
	}
	return fmt.Sprintf("%d cards", v.TotalCards)
}

// Snapshot renders the current state through the filter pipeline.
func (n *Navigator) Snapshot() View {
	n.mu.Lock()
	defer n.mu.Unlock()

	v := View{
		Level:       n.level,
		Breadcrumb:  []string{"Games"},
		Sort:        n.sort,
		ShowFilters: n.showFilters,
	}
	if n.selectedGame != nil {
		v.Breadcrumb = append(v.Breadcrumb, n.selectedGame.DisplayName)
	}
	if n.selectedExpansion != nil {
		v.Breadcrumb = append(v.Breadcrumb, n.selectedExpansion.Name)
	}

	switch n.level {
	case LevelGames:
		v.Games = filter.FilterGames(n.games, n.search)
	case LevelExpansions:
		v.Expansions = filter.FilterExpansions(n.expansions, n.search)
		v.PagesLoaded = n.expansionPages
		v.TotalPages = n.expansionTotal
	case LevelCards:
		v.Rarities = facet.ExtractRarities(n.cards)
		v.ExtendedOptions = facet.ExtractExtendedFilterOptions(n.cards)
		v.Cards = filter.Apply(n.cards, filter.Query{
			Text:     n.search,
			Rarities: n.rarities,
			Fields:   n.fields,
			Sort:     n.sort,
		})
		v.TotalCards = len(n.cards)
		v.FilteredCards = len(v.Cards)
		v.ActiveFilters = n.hasActiveFiltersLocked()
		v.PagesLoaded = n.cardPages
		v.TotalPages = n.cardTotal
	}

	return v
}

// Level returns the current browse level.
func (n *Navigator) Level() Level {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.level
}

func (n *Navigator) hasActiveFiltersLocked() bool {
	if len(n.rarities) > 0 {
		return true
	}
	for _, f := range n.fields {
		if f != nil && f.Active() {
			return true
		}
	}
	return false
}
