package model

import "time"

// Engagement is the like pair of a post. Liked and LikeCount always move
// together; after reconciliation liked=true implies count >= 1.
type Engagement struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type Post struct {
	ViewHash     string        `json:"viewHash"`
	Author       CommentAuthor `json:"author"`
	Body         string        `json:"body"`
	ImagePath    string        `json:"imagePath"`
	Engagement   Engagement    `json:"engagement"`
	CommentCount int           `json:"commentCount"`
	CreatedAt    time.Time     `json:"createDatetime"`
}

// MonthImage is one uploaded artifact scoped to a calendar month tag
// (e.g. "2026-08"), so a month's cover or a meal photo can be located
// without a separate id.
type MonthImage struct {
	MonthTag  string    `json:"monthTag"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updateDatetime"`
}
