package questbank

import "github.com/wellquest/questmap/internal/wellquest"

var builtin = map[wellquest.Category][]Template{
	wellquest.CategoryPark: {
		{"Breath of the Forest", "Practice deep breathing exercises for 5 minutes among the ancient trees", 5, "breathing"},
		{"Nature's Meditation", "Find a peaceful spot and meditate for 10 minutes, connecting with nature's energy", 10, "meditation"},
		{"Mindful Walking", "Take a slow, mindful walk for 15 minutes, observing the natural world around you", 15, "walking"},
		{"Gratitude Ritual", "Spend 5 minutes expressing gratitude for the natural beauty surrounding you", 5, "gratitude"},
	},
	wellquest.CategoryGym: {
		{"Warrior's Strength", "Complete a 20-minute strength training session to forge your inner warrior", 20, "strength"},
		{"Flow of Power", "Engage in 15 minutes of cardio to channel your vital energy", 15, "cardio"},
		{"Balance Mastery", "Practice balance and flexibility exercises for 10 minutes", 10, "balance"},
		{"Aquatic Harmony", "Swim or practice water exercises for 25 minutes to cleanse body and spirit", 25, "swimming"},
	},
	wellquest.CategoryLibrary: {
		{"Wisdom Seeking", "Spend 20 minutes reading about personal development or wellness", 20, "reading"},
		{"Knowledge Reflection", "Journal about your recent learnings for 15 minutes in this sacred space", 15, "journaling"},
		{"Silent Contemplation", "Practice silent meditation for 10 minutes surrounded by knowledge", 10, "meditation"},
	},
	wellquest.CategoryCafe: {
		{"Social Connection", "Engage in meaningful conversation or practice active listening for 15 minutes", 15, "social"},
		{"Mindful Consumption", "Practice mindful eating or drinking, savoring each moment for 10 minutes", 10, "mindfulness"},
		{"Community Bonds", "Connect with others or practice kindness for 20 minutes", 20, "community"},
	},
	wellquest.CategoryLandmark: {
		{"Sacred Pilgrimage", "Reflect on your personal journey and set intentions for 15 minutes", 15, "reflection"},
		{"Monument Meditation", "Practice gratitude meditation for 10 minutes at this sacred site", 10, "meditation"},
	},
	wellquest.CategoryTemple: {
		{"Spiritual Awakening", "Engage in deep meditation or prayer for 20 minutes", 20, "meditation"},
		{"Inner Peace Ritual", "Practice mindfulness and seek inner peace for 15 minutes", 15, "mindfulness"},
	},
}
