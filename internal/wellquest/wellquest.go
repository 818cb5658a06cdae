// Package wellquest defines the core domain types of the location-quest engine.
// It has no external dependencies.
package wellquest

import (
	"time"

	"github.com/wellquest/questmap/internal/geo"
)

// Category classifies a location and selects its quest templates.
type Category string

const (
	CategoryPark     Category = "park"
	CategoryGym      Category = "gym"
	CategoryLibrary  Category = "library"
	CategoryCafe     Category = "cafe"
	CategoryLandmark Category = "landmark"
	CategoryTemple   Category = "temple"
)

// Categories lists the closed set of location categories.
var Categories = []Category{
	CategoryPark,
	CategoryGym,
	CategoryLibrary,
	CategoryCafe,
	CategoryLandmark,
	CategoryTemple,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Location is an immutable catalog entry.
type Location struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MagicalName string   `json:"magicalName"`
	Category    Category `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Description string   `json:"description"`
	QuestReward int      `json:"questReward"`
}

// Point returns the location's coordinates.
func (l Location) Point() geo.Point {
	return geo.Point{Lat: l.Latitude, Lon: l.Longitude}
}

// MagicalLocation is a catalog entry annotated with discovery state.
// Discovered is always VisitCount > 0.
type MagicalLocation struct {
	Location
	Discovered bool `json:"discovered"`
	VisitCount int  `json:"visitCount"`
}

// NearbyLocation is a search result with its distance from the query point.
type NearbyLocation struct {
	MagicalLocation
	DistanceMeters float64 `json:"distanceMeters"`
}

// Position is one device fix. Accuracy is in meters.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

func (p Position) Point() geo.Point {
	return geo.Point{Lat: p.Latitude, Lon: p.Longitude}
}

// LocationQuest is a user-targeted objective tied to one location. Title,
// description and reward are fixed at creation.
type LocationQuest struct {
	ID               string     `json:"id"`
	LocationID       string     `json:"locationId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DurationMinutes  int        `json:"durationMinutes"`
	Activity         string     `json:"activity"`
	XPReward         int        `json:"xpReward"`
	Completed        bool       `json:"completed"`
	DistanceToTarget *float64   `json:"distanceToTarget,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`

	// Target is the coordinate the quest completes at.
	Target geo.Point `json:"target"`
}

// Completion is what the engine hands to the reward, chronicle and voice
// layers when a quest completes.
type Completion struct {
	QuestID     string    `json:"questId"`
	LocationID  string    `json:"locationId"`
	MagicalName string    `json:"magicalName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	XPReward    int       `json:"xpReward"`
	Position    Position  `json:"position"`
	CompletedAt time.Time `json:"completedAt"`
}
