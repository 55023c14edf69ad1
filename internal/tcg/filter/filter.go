// Package filter implements the card search pipeline: free text, rarity,
// extended-data filters and a final deterministic sort, applied in that
// fixed order. The pipeline is a pure function of its inputs and can be
// re-run on every input change.
package filter

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/CALILU/cardtradr/internal/tcg"
	"github.com/CALILU/cardtradr/internal/tcg/facet"
)

// SortField selects what the final stage sorts by.
type SortField string

// SortDirection selects ascending or descending order.
type SortDirection string

// Sort fields and directions. The UI offers the six combinations.
const (
	SortByName   SortField = "name"
	SortByNumber SortField = "number"
	SortByRarity SortField = "rarity"

	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortOption is a (field, direction) pair held as session state.
type SortOption struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort matches the app default: set number, ascending.
func DefaultSort() SortOption {
	return SortOption{Field: SortByNumber, Direction: Ascending}
}

// FieldFilter is a selection against one extended-data field. Exactly two
// shapes exist: a discrete value set or an inclusive numeric range.
type FieldFilter interface {
	// Matches reports whether a field value satisfies the selection.
	Matches(value string) bool
	// Active reports whether the selection constrains anything at all.
	Active() bool
}

// Categorical keeps cards whose field value is in a discrete set.
type Categorical struct {
	values map[string]struct{}
}

// NewCategorical builds a categorical selection from its acceptable values.
func NewCategorical(values ...string) Categorical {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return Categorical{values: set}
}

// Matches reports set membership.
func (c Categorical) Matches(value string) bool {
	_, ok := c.values[value]
	return ok
}

// Active reports whether any value is selected.
func (c Categorical) Active() bool { return len(c.values) > 0 }

// NumericRange keeps cards whose field value parses as a number within
// [Min, Max] inclusive. Non-numeric values never match.
type NumericRange struct {
	Min float64
	Max float64
}

// Matches parses the value and checks the bounds.
func (r NumericRange) Matches(value string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// Active always constrains.
func (r NumericRange) Active() bool { return true }

// Query is the full set of active selections fed to the pipeline.
type Query struct {
	// Text is matched case-insensitively against the display name.
	// Blank is a pass-through.
	Text string

	// Rarities keeps only cards whose rarity is in the set.
	// Empty is a pass-through.
	Rarities []string

	// Fields maps extended-data field names to their selections.
	// Multiple fields combine with AND. A card lacking a selected field
	// is excluded, not passed.
	Fields map[string]FieldFilter

	// Sort orders the final result.
	Sort SortOption
}

// Apply runs the pipeline: text, then rarity, then extended-data, then
// sort. It never mutates the input slice.
func Apply(cards []tcg.Card, q Query) []tcg.Card {
	result := textStage(cards, q.Text)
	result = rarityStage(result, q.Rarities)
	result = extendedStage(result, q.Fields)
	return sortStage(result, q.Sort)
}

func textStage(cards []tcg.Card, text string) []tcg.Card {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return cards
	}
	var out []tcg.Card
	for _, card := range cards {
		if strings.Contains(strings.ToLower(card.DisplayName()), query) {
			out = append(out, card)
		}
	}
	return out
}

func rarityStage(cards []tcg.Card, rarities []string) []tcg.Card {
	if len(rarities) == 0 {
		return cards
	}
	set := make(map[string]struct{}, len(rarities))
	for _, r := range rarities {
		set[r] = struct{}{}
	}
	var out []tcg.Card
	for _, card := range cards {
		if _, ok := set[card.Rarity]; ok {
			out = append(out, card)
		}
	}
	return out
}

func extendedStage(cards []tcg.Card, fields map[string]FieldFilter) []tcg.Card {
	active := make(map[string]FieldFilter, len(fields))
	for name, f := range fields {
		if f != nil && f.Active() {
			active[name] = f
		}
	}
	if len(active) == 0 {
		return cards
	}

	var out []tcg.Card
	for _, card := range cards {
		keep := true
		for name, f := range active {
			value, ok := card.ExtendedValue(name)
			if !ok || !f.Matches(value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, card)
		}
	}
	return out
}

func sortStage(cards []tcg.Card, opt SortOption) []tcg.Card {
	sorted := make([]tcg.Card, len(cards))
	copy(sorted, cards)

	mult := 1
	if opt.Direction == Descending {
		mult = -1
	}

	// collate.Collator is not safe for concurrent use, so each invocation
	// gets its own.
	coll := collate.New(language.English, collate.Loose)

	cmp := func(a, b *tcg.Card) int {
		switch opt.Field {
		case SortByName:
			return mult * coll.CompareString(a.DisplayName(), b.DisplayName())
		case SortByNumber:
			return mult * compareInt(leadingInt(a.Number), leadingInt(b.Number))
		case SortByRarity:
			ra, rb := facet.RarityRank(a.Rarity), facet.RarityRank(b.Rarity)
			if ra != rb {
				return mult * compareInt(ra, rb)
			}
			// Tie-break by name ascending regardless of direction.
			return coll.CompareString(a.DisplayName(), b.DisplayName())
		default:
			return 0
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return cmp(&sorted[i], &sorted[j]) < 0
	})

	return sorted
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// leadingInt parses the leading integer of a free-form set number
// ("25", "4a", "TG04"). Unparsable numbers default to 0, so non-numeric
// set numbers sort first in ascending order.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0
	}
	n, err := strconv.Atoi(s[:j])
	if err != nil {
		return 0
	}
	return n
}

// FilterGames applies the free-text stage to a games list (the only filter
// available at the games drill level).
func FilterGames(games []tcg.Game, text string) []tcg.Game {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return games
	}
	var out []tcg.Game
	for _, g := range games {
		if strings.Contains(strings.ToLower(g.DisplayName), query) {
			out = append(out, g)
		}
	}
	return out
}

// FilterExpansions applies the free-text stage to an expansions list.
func FilterExpansions(expansions []tcg.Expansion, text string) []tcg.Expansion {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return expansions
	}
	var out []tcg.Expansion
	for _, e := range expansions {
		if strings.Contains(strings.ToLower(e.Name), query) {
			out = append(out, e)
		}
	}
	return out
}
