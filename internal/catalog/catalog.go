// Package catalog holds the compiled-in registry of magical locations.
package catalog

import (
	"errors"
	"fmt"

	"github.com/wellquest/questmap/internal/geo"
	"github.com/wellquest/questmap/internal/wellquest"
)

var ErrInvalidLocation = errors.New("invalid catalog location")

// Catalog is a read-only, order-stable set of locations.
type Catalog struct {
	locations []wellquest.Location
	byID      map[string]int
}

// New validates defs and builds a catalog from them.
func New(defs []wellquest.Location) (*Catalog, error) {
	c := &Catalog{
		locations: make([]wellquest.Location, len(defs)),
		byID:      make(map[string]int, len(defs)),
	}
	copy(c.locations, defs)

	for i, loc := range c.locations {
		if loc.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidLocation, i)
		}
		if _, dup := c.byID[loc.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidLocation, loc.ID)
		}
		if !loc.Category.Valid() {
			return nil, fmt.Errorf("%w: %q has unknown category %q", ErrInvalidLocation, loc.ID, loc.Category)
		}
		if loc.QuestReward < 0 {
			return nil, fmt.Errorf("%w: %q has negative reward", ErrInvalidLocation, loc.ID)
		}
		if err := geo.Validate(loc.Point()); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidLocation, loc.ID, err)
		}
		c.byID[loc.ID] = i
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtin)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns a copy of every location in catalog order.
func (c *Catalog) All() []wellquest.Location {
	out := make([]wellquest.Location, len(c.locations))
	copy(out, c.locations)
	return out
}

func (c *Catalog) ByID(id string) (wellquest.Location, bool) {
	i, ok := c.byID[id]
	if !ok {
		return wellquest.Location{}, false
	}
	return c.locations[i], true
}

func (c *Catalog) Len() int { return len(c.locations) }
