package cache

import (
	"strconv"
	"strings"
)

// Key is a structured cache key: a resource kind plus its parameters,
// serialized deterministically. Building keys through this type (instead of
// ad hoc string interpolation) keeps distinct resources from colliding.
type Key struct {
	Kind  string
	Parts []string
}

// String encodes the key as kind:part:part...
func (k Key) String() string {
	if len(k.Parts) == 0 {
		return k.Kind
	}
	return k.Kind + ":" + strings.Join(k.Parts, ":")
}

// GamesKey is the cache key for the full games list.
func GamesKey() Key {
	return Key{Kind: "games"}
}

// ExpansionsKey is the cache key for one page of a game's expansions.
func ExpansionsKey(categoryID, page int) Key {
	return Key{Kind: "expansions", Parts: []string{strconv.Itoa(categoryID), "p" + strconv.Itoa(page)}}
}

// CardsKey is the cache key for one page of an expansion's cards.
func CardsKey(groupID, page int) Key {
	return Key{Kind: "cards", Parts: []string{strconv.Itoa(groupID), "p" + strconv.Itoa(page)}}
}
