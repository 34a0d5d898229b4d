package domain

import (
	"sort"
	"time"
)

// Post is a news article or announcement published by a school.
type Post struct {
	ID        int64     `json:"id"`
	SchoolID  int64     `json:"school_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Content   string    `json:"content,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Category  string    `json:"category,omitempty"`
	Published bool      `json:"is_published"`
	CreatedAt time.Time `json:"created_at"`
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url"`
	Category  string    `json:"category"`
	Published bool      `json:"is_published"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// SortPosts orders posts newest first, ties by ascending id.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}
