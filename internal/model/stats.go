package model

import "time"

// StreakResult is derived on every request and never persisted.
type StreakResult struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
	MissedDays    int `json:"missedDays"`
}

// LabelStat is a mood or tag with its count and share in percent.
type LabelStat struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// MoodSummary aggregates the entries of a date range for the dashboard.
type MoodSummary struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Total int    `json:"total"`

	PositiveCount int `json:"positiveCount"`
	NeutralCount  int `json:"neutralCount"`
	NegativeCount int `json:"negativeCount"`

	PositivePercent int `json:"positivePercent"`
	NeutralPercent  int `json:"neutralPercent"`
	NegativePercent int `json:"negativePercent"`

	MostFrequentMood LabelStat   `json:"mostFrequentMood"`
	TopMoods         []LabelStat `json:"topMoods"`

	TagsByMentions []LabelStat `json:"tagsByMentions"`
	TopTagsByEntry []LabelStat `json:"topTagsByEntry"`
}

// CustomTag is a user-defined tag name offered alongside tags in use.
type CustomTag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
