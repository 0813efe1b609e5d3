package model

import "strings"

// Category groups moods into Positive, Neutral and Negative.
type Category string

const (
	CategoryPositive Category = "Positive"
	CategoryNeutral  Category = "Neutral"
	CategoryNegative Category = "Negative"
)

// Categories lists the allowed categories in display order.
var Categories = []Category{CategoryPositive, CategoryNeutral, CategoryNegative}

// Mood is one entry of the fixed mood vocabulary.
type Mood struct {
	Name     string   `json:"name"`
	Emoji    string   `json:"emoji"`
	Category Category `json:"category"`
}

// Moods is the mood taxonomy offered to the host UI.
var Moods = []Mood{
	{"Happy", "😊", CategoryPositive},
	{"Excited", "🤩", CategoryPositive},
	{"Relaxed", "😌", CategoryPositive},
	{"Grateful", "🙏", CategoryPositive},
	{"Confident", "💪", CategoryPositive},

	{"Calm", "😐", CategoryNeutral},
	{"Thoughtful", "🤔", CategoryNeutral},
	{"Curious", "🧐", CategoryNeutral},
	{"Nostalgic", "🥺", CategoryNeutral},
	{"Bored", "😑", CategoryNeutral},

	{"Sad", "😢", CategoryNegative},
	{"Angry", "😠", CategoryNegative},
	{"Stressed", "😣", CategoryNegative},
	{"Lonely", "😔", CategoryNegative},
	{"Anxious", "😰", CategoryNegative},
}

// ParseCategory matches s case-insensitively against the allowed categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// NormalizeCategory returns the canonical category, or Positive when s is
// not one of the allowed values.
func NormalizeCategory(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return CategoryPositive
}

// CategoryFor looks a mood up in the taxonomy. Unknown moods are Positive.
func CategoryFor(mood string) Category {
	mood = strings.TrimSpace(mood)
	for _, m := range Moods {
		if strings.EqualFold(m.Name, mood) {
			return m.Category
		}
	}
	return CategoryPositive
}
