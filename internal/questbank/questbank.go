// Package questbank synthesizes quest text for a location from per-category
// template pools.
package questbank

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wellquest/questmap/internal/wellquest"
)

type Template struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes"`
	Activity        string `json:"activity"`
}

// Generic is used for categories with no templates.
var Generic = Template{
	Title:           "Visit and Discover",
	Description:     "A mysterious force draws you here. Discover what awaits you",
	DurationMinutes: 10,
	Activity:        "exploration",
}

type Bank struct {
	templates map[wellquest.Category][]Template

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a bank drawing from src. A nil src seeds from the clock.
func New(templates map[wellquest.Category][]Template, src rand.Source) *Bank {
	if src == nil {
		src = rand.NewPCG(uint64(time.Now().UnixNano()), 0)
	}
	return &Bank{
		templates: templates,
		rng:       rand.New(src),
	}
}

// Default returns a bank over the built-in templates.
func Default(src rand.Source) *Bank {
	return New(builtin, src)
}

// Pick draws uniformly from the category's pool, or returns Generic.
func (b *Bank) Pick(category wellquest.Category) Template {
	pool := b.templates[category]
	if len(pool) == 0 {
		return Generic
	}

	b.mu.Lock()
	i := b.rng.IntN(len(pool))
	b.mu.Unlock()

	return pool[i]
}

// Synthesize picks a template for loc and binds it to the location's
// magical name.
func (b *Bank) Synthesize(loc wellquest.Location) Template {
	t := b.Pick(loc.Category)
	if len(b.templates[loc.Category]) == 0 {
		t.Title = "Visit " + loc.MagicalName
		t.Description = fmt.Sprintf("A mysterious force draws you to %s. Discover what awaits you there.", loc.MagicalName)
		return t
	}
	t.Description = fmt.Sprintf("%s at %s.", t.Description, loc.MagicalName)
	return t
}

// Templates returns the pool for category.
func (b *Bank) Templates(category wellquest.Category) []Template {
	out := make([]Template, len(b.templates[category]))
	copy(out, b.templates[category])
	return out
}
