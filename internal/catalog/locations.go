package catalog

import "github.com/wellquest/questmap/internal/wellquest"

var builtin = []wellquest.Location{
	// Parks and nature.
	{
		ID:          "park-central",
		Name:        "Central Park",
		MagicalName: "The Whispering Grove of Serenity",
		Category:    wellquest.CategoryPark,
		Latitude:    40.7829,
		Longitude:   -73.9654,
		Description: "A vast green sanctuary where ancient spirits dwell among the trees",
		QuestReward: 100,
	},
	{
		ID:          "park-riverside",
		Name:        "Riverside Park",
		MagicalName: "The Healing Waters Sanctuary",
		Category:    wellquest.CategoryPark,
		Latitude:    40.7956,
		Longitude:   -73.9722,
		Description: "Where flowing waters carry away stress and worry",
		QuestReward: 90,
	},
	{
		ID:          "park-prospect",
		Name:        "Prospect Park",
		MagicalName: "The Emerald Circle of Renewal",
		Category:    wellquest.CategoryPark,
		Latitude:    40.6602,
		Longitude:   -73.9690,
		Description: "A mystical realm where nature's energy flows strongest",
		QuestReward: 95,
	},

	// Fitness.
	{
		ID:          "gym-fitness",
		Name:        "Fitness Center",
		MagicalName: "The Iron Temple of Fortitude",
		Category:    wellquest.CategoryGym,
		Latitude:    40.7614,
		Longitude:   -73.9776,
		Description: "A forge where warriors strengthen body and spirit",
		QuestReward: 85,
	},
	{
		ID:          "gym-yoga",
		Name:        "Yoga Studio",
		MagicalName: "The Lotus Pavilion of Balance",
		Category:    wellquest.CategoryGym,
		Latitude:    40.7505,
		Longitude:   -73.9934,
		Description: "Sacred halls where mind and body unite in harmony",
		QuestReward: 80,
	},
	{
		ID:          "pool-aquatic",
		Name:        "Aquatic Center",
		MagicalName: "The Azure Pools of Vitality",
		Category:    wellquest.CategoryGym,
		Latitude:    40.7282,
		Longitude:   -73.9942,
		Description: "Crystal waters that cleanse both body and soul",
		QuestReward: 90,
	},

	// Knowledge.
	{
		ID:          "library-main",
		Name:        "Main Library",
		MagicalName: "The Archive of Eternal Knowledge",
		Category:    wellquest.CategoryLibrary,
		Latitude:    40.7532,
		Longitude:   -73.9822,
		Description: "Ancient repository where wisdom flows like rivers",
		QuestReward: 75,
	},
	{
		ID:          "library-branch",
		Name:        "Community Library",
		MagicalName: "The Scholars' Retreat",
		Category:    wellquest.CategoryLibrary,
		Latitude:    40.7589,
		Longitude:   -73.9851,
		Description: "A quiet sanctuary for contemplation and learning",
		QuestReward: 70,
	},

	// Social.
	{
		ID:          "cafe-wellness",
		Name:        "Wellness Cafe",
		MagicalName: "The Mystic Brew Haven",
		Category:    wellquest.CategoryCafe,
		Latitude:    40.7505,
		Longitude:   -73.9934,
		Description: "A gathering place where healing brews restore the spirit",
		QuestReward: 60,
	},
	{
		ID:          "cafe-community",
		Name:        "Community Center",
		MagicalName: "The Fellowship Hall",
		Category:    wellquest.CategoryCafe,
		Latitude:    40.7648,
		Longitude:   -73.9808,
		Description: "Where kindred spirits meet and bonds are forged",
		QuestReward: 65,
	},

	// Landmarks and temples.
	{
		ID:          "landmark-monument",
		Name:        "Peace Monument",
		MagicalName: "The Shrine of Inner Peace",
		Category:    wellquest.CategoryLandmark,
		Latitude:    40.7128,
		Longitude:   -74.0060,
		Description: "A sacred site where tranquility radiates outward",
		QuestReward: 110,
	},
	{
		ID:          "temple-meditation",
		Name:        "Meditation Center",
		MagicalName: "The Temple of Mindful Awakening",
		Category:    wellquest.CategoryTemple,
		Latitude:    40.7549,
		Longitude:   -73.9840,
		Description: "A sacred space where the soul finds its center",
		QuestReward: 100,
	},
}
