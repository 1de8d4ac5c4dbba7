// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Status is the publication state shared by posts and projects.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// PublishOutcome distinguishes a fresh publish from the idempotent retry path.
type PublishOutcome string

const (
	PublishOutcomePublished        PublishOutcome = "published"
	PublishOutcomeAlreadyPublished PublishOutcome = "already_published"
)

// PublishResult is returned by publish operations.
type PublishResult struct {
	Status PublishOutcome `json:"status"`
}

// Post is a blog article.
type Post struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	Slug           string     `gorm:"not null;uniqueIndex" json:"slug"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	Excerpt        *string    `json:"excerpt,omitempty"`
	Tags           []string   `gorm:"type:text;serializer:json" json:"tags"`
	Category       string     `json:"category"`
	Status         Status     `gorm:"type:varchar(16);not null;index:idx_posts_status_published,priority:1" json:"status"`
	AuthorID       uint       `gorm:"not null" json:"author_id"`
	AuthorName     string     `json:"author_name"`
	CoverImageID   *string    `json:"cover_image_id,omitempty"`
	SEOTitle       *string    `gorm:"column:seo_title" json:"seo_title,omitempty"`
	SEODescription *string    `gorm:"column:seo_description" json:"seo_description,omitempty"`
	Views          int64      `gorm:"not null;default:0" json:"views"`
	Likes          int64      `gorm:"not null;default:0" json:"likes"`
	PublishedAt    *time.Time `gorm:"index:idx_posts_status_published,priority:2" json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// CoverImageURL is resolved from object storage on admin and detail reads.
	CoverImageURL string `gorm:"-" json:"cover_image_url,omitempty"`
}

// PostPatch carries the fields of a partial post update. Nil fields are left untouched.
type PostPatch struct {
	Title          *string   `json:"title,omitempty" validate:"omitnil,min=3,max=120"`
	Slug           *string   `json:"slug,omitempty" validate:"omitnil,min=3,max=150,slug"`
	Content        *string   `json:"content,omitempty" validate:"omitnil,min=50"`
	Excerpt        *string   `json:"excerpt,omitempty" validate:"omitnil,max=200"`
	Tags           *[]string `json:"tags,omitempty" validate:"omitnil,min=1,max=5,dive,min=2,max=30,tag"`
	Category       *string   `json:"category,omitempty" validate:"omitnil,min=2,max=30"`
	CoverImageID   *string   `json:"cover_image_id,omitempty" validate:"omitnil,min=1"`
	SEOTitle       *string   `json:"seo_title,omitempty" validate:"omitnil,max=60"`
	SEODescription *string   `json:"seo_description,omitempty" validate:"omitnil,max=160"`
	Status         *Status   `json:"status,omitempty" validate:"omitnil,oneof=draft published archived"`
}

// Apply copies the present fields onto p. It does not touch timestamps.
func (patch PostPatch) Apply(p *Post) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Slug != nil {
		p.Slug = *patch.Slug
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		p.Excerpt = patch.Excerpt
	}
	if patch.Tags != nil {
		p.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.CoverImageID != nil {
		p.CoverImageID = patch.CoverImageID
	}
	if patch.SEOTitle != nil {
		p.SEOTitle = patch.SEOTitle
	}
	if patch.SEODescription != nil {
		p.SEODescription = patch.SEODescription
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
}

// Empty reports whether the patch carries no fields.
func (patch PostPatch) Empty() bool {
	return patch == PostPatch{}
}
