package domain

import "time"

// RatingSnapshot is a single community rating as seen by the engine.
type RatingSnapshot struct {
	UserID               string
	Value                float64
	Weight               float64
	IPAddress            string
	CreatedAt            time.Time
	UserCreatedAt        time.Time
	UserCredibilityScore float64
}

// UserRatingRecord pairs one of a user's ratings with the rated article's current score.
type UserRatingRecord struct {
	ArticleID      string
	Category       string
	Value          float64
	ArticleOverall float64
}

// UserProfile is the persisted rater reputation.
type UserProfile struct {
	ID                  string
	Username            string
	CredibilityScore    float64
	CategoryCredibility map[string]float64
	CreatedAt           time.Time
}

// UserHistory is the input of a user credibility recompute.
type UserHistory struct {
	User    UserProfile
	Ratings []UserRatingRecord
}

// RatingDistribution buckets an article's ratings for display.
type RatingDistribution struct {
	Total   int
	Average float64
	VeryLow int
	Low     int
	Neutral int
	High    int
}
