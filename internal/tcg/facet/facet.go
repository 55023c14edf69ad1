// Package facet derives filterable attributes from a page of card results:
// the rarity values present and the extended-data fields worth exposing as
// filter controls.
package facet

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/CALILU/cardtradr/internal/tcg"
)

// rarityRank orders rarity vocabulary from least to most rare. The table
// spans several games (Pokemon, Yu-Gi-Oh, MTG) whose vocabularies overlap.
var rarityRank = map[string]int{
	"Common":          1,
	"Uncommon":        2,
	"Rare":            3,
	"Rare Holo":       4,
	"Rare Holo EX":    5,
	"Rare Holo GX":    6,
	"Rare Holo V":     6,
	"Rare Holo VMAX":  7,
	"Rare Holo VSTAR": 7,
	"Rare Ultra":      8,
	"Ultra Rare":      8,
	"Rare Secret":     9,
	"Secret Rare":     9,
	"Rare Rainbow":    10,
	"Rare Shiny":      10,
	"Amazing Rare":    10,
	"Promo":           0,
	// Yu-Gi-Oh
	"Short Print":      2,
	"Super Rare":       5,
	"Starlight Rare":   10,
	"Ghost Rare":       10,
	"Collector's Rare": 9,
	// MTG
	"Mythic":      10,
	"Mythic Rare": 10,
	// Generic
	"Special": 8,
}

// unknownRank places rarities absent from the table mid-tier, so they sort
// plausibly among known tiers instead of first or last.
const unknownRank = 5

// RarityRank returns the rank of a rarity string.
func RarityRank(rarity string) int {
	if rank, ok := rarityRank[rarity]; ok {
		return rank
	}
	return unknownRank
}

// ExtendedFilterOption is a derived filter control: an extended-data field
// observed across a card page, its distinct values, and whether all values
// are purely numeric (which selects a range control instead of chips).
type ExtendedFilterOption struct {
	FieldName   string   `json:"fieldName"`
	DisplayName string   `json:"displayName"`
	Values      []string `json:"values"`
	IsNumeric   bool     `json:"isNumeric"`
}

// Fields with fewer than minFacetValues distinct values offer nothing to
// filter on; fields with more than maxFacetValues are noise (free text or
// ID-like).
const (
	minFacetValues = 2
	maxFacetValues = 30
)

var numericValue = regexp.MustCompile(`^\d+$`)

// ExtractRarities collects the distinct non-empty rarities present in
// cards, ordered by rarity rank. The sort is stable, so rarities of equal
// rank keep their first-seen order.
func ExtractRarities(cards []tcg.Card) []string {
	seen := make(map[string]struct{})
	rarities := []string{}
	for _, card := range cards {
		if card.Rarity == "" {
			continue
		}
		if _, ok := seen[card.Rarity]; ok {
			continue
		}
		seen[card.Rarity] = struct{}{}
		rarities = append(rarities, card.Rarity)
	}

	sort.SliceStable(rarities, func(i, j int) bool {
		return RarityRank(rarities[i]) < RarityRank(rarities[j])
	})
	return rarities
}

// ExtractExtendedFilterOptions groups extended-data entries across the card
// list by field name and keeps the fields with 2 to 30 distinct non-empty
// values. The first-seen display label wins for each field. Numeric fields'
// values are sorted ascending by value, others lexicographically. Fields
// come back in first-seen order.
func ExtractExtendedFilterOptions(cards []tcg.Card) []ExtendedFilterOption {
	type fieldEntry struct {
		displayName string
		values      map[string]struct{}
	}

	fields := make(map[string]*fieldEntry)
	var order []string

	for _, card := range cards {
		for _, ext := range card.ExtendedData {
			if strings.TrimSpace(ext.Value) == "" {
				continue
			}
			entry, ok := fields[ext.Name]
			if !ok {
				displayName := ext.DisplayName
				if displayName == "" {
					displayName = ext.Name
				}
				entry = &fieldEntry{displayName: displayName, values: make(map[string]struct{})}
				fields[ext.Name] = entry
				order = append(order, ext.Name)
			}
			entry.values[ext.Value] = struct{}{}
		}
	}

	result := []ExtendedFilterOption{}
	for _, name := range order {
		entry := fields[name]
		if len(entry.values) < minFacetValues || len(entry.values) > maxFacetValues {
			continue
		}

		values := make([]string, 0, len(entry.values))
		for v := range entry.values {
			values = append(values, v)
		}

		isNumeric := true
		for _, v := range values {
			if !numericValue.MatchString(strings.TrimSpace(v)) {
				isNumeric = false
				break
			}
		}

		if isNumeric {
			sort.Slice(values, func(i, j int) bool {
				a, _ := strconv.Atoi(strings.TrimSpace(values[i]))
				b, _ := strconv.Atoi(strings.TrimSpace(values[j]))
				return a < b
			})
		} else {
			sort.Strings(values)
		}

		result = append(result, ExtendedFilterOption{
			FieldName:   name,
			DisplayName: entry.displayName,
			Values:      values,
			IsNumeric:   isNumeric,
		})
	}

	return result
}
