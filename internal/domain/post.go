package domain

import (
	"time"
)

// MaxTitleLength is the maximum allowed length of a post title in characters.
const MaxTitleLength = 255

// Post represents a blog post
type Post struct {
	ID          string
	Title       string
	Content     string
	Author      string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPost creates a new unpublished Post instance
func NewPost(id, title, content, author string, now time.Time) *Post {
	return &Post{
		ID:          id,
		Title:       title,
		Content:     content,
		Author:      author,
		PublishedAt: nil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Published reports whether the post has been published.
func (p *Post) Published() bool {
	return p.PublishedAt != nil
}

// Publish marks the post as published at the given time. Publishing an
// already published post keeps the original timestamp.
func (p *Post) Publish(now time.Time) {
	if p.PublishedAt != nil {
		return
	}
	t := now.UTC()
	p.PublishedAt = &t
	p.UpdatedAt = t
}

// Unpublish clears the publication timestamp.
func (p *Post) Unpublish(now time.Time) {
	p.PublishedAt = nil
	p.UpdatedAt = now.UTC()
}

// ValidatePost validates a Post instance
func ValidatePost(p *Post) error {
	if p == nil {
		return NewDomainError(ErrCodeValidation, "post cannot be nil")
	}

	if p.Title == "" {
		return ErrMissingTitle
	}

	if len([]rune(p.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if p.Content == "" {
		return ErrMissingContent
	}

	if p.Author == "" {
		return ErrMissingAuthor
	}

	return nil
}
