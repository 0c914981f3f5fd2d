package models

import "time"

type BlogPost struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	AuthorID      int64      `json:"author_id"`
	IsPublished   bool       `json:"is_published"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Publish marks the post published. The publication date is set on the first
// publish only; republishing keeps the original date.
func (p *BlogPost) Publish(now time.Time) {
	p.IsPublished = true
	if p.PublishedDate == nil {
		at := now.UTC()
		p.PublishedDate = &at
	}
}

func (p *BlogPost) Unpublish() {
	p.IsPublished = false
}
