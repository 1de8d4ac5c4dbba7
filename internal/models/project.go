package models

import "time"

// MaxProjectImages bounds Project.ImageIDs.
const MaxProjectImages = 3

// Project is a portfolio entry. It follows the same publication workflow as Post.
type Project struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	Slug           string     `gorm:"not null;uniqueIndex" json:"slug"`
	ProjectDetails string     `gorm:"type:text;not null" json:"project_details"`
	Excerpt        *string    `json:"excerpt,omitempty"`
	LiveURL        *string    `gorm:"column:live_url" json:"live_url,omitempty"`
	GithubURL      *string    `gorm:"column:github_url" json:"github_url,omitempty"`
	Technologies   []string   `gorm:"type:text;serializer:json" json:"technologies"`
	Features       []string   `gorm:"type:text;serializer:json" json:"features"`
	Tags           []string   `gorm:"type:text;serializer:json" json:"tags"`
	Category       string     `json:"category"`
	ImageIDs       []string   `gorm:"column:image_ids;type:text;serializer:json" json:"image_ids"`
	Status         Status     `gorm:"type:varchar(16);not null;index:idx_projects_status_published,priority:1" json:"status"`
	AuthorID       uint       `gorm:"not null" json:"author_id"`
	AuthorName     string     `json:"author_name"`
	SEOTitle       *string    `gorm:"column:seo_title" json:"seo_title,omitempty"`
	SEODescription *string    `gorm:"column:seo_description" json:"seo_description,omitempty"`
	PublishedAt    *time.Time `gorm:"index:idx_projects_status_published,priority:2" json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	ImageURLs []string `gorm:"-" json:"image_urls,omitempty"`
}

// ProjectPatch carries the fields of a partial project update. Nil fields are left untouched.
type ProjectPatch struct {
	Title          *string   `json:"title,omitempty" validate:"omitnil,min=3,max=120"`
	Slug           *string   `json:"slug,omitempty" validate:"omitnil,min=3,max=150,slug"`
	ProjectDetails *string   `json:"project_details,omitempty" validate:"omitnil,min=50"`
	Excerpt        *string   `json:"excerpt,omitempty" validate:"omitnil,max=200"`
	LiveURL        *string   `json:"live_url,omitempty" validate:"omitnil,url_or_empty"`
	GithubURL      *string   `json:"github_url,omitempty" validate:"omitnil,url_or_empty"`
	Technologies   *[]string `json:"technologies,omitempty" validate:"omitnil,max=20,dive,min=1,max=40"`
	Features       *[]string `json:"features,omitempty" validate:"omitnil,max=20,dive,min=1,max=200"`
	Tags           *[]string `json:"tags,omitempty" validate:"omitnil,min=1,max=5,dive,min=2,max=30,tag"`
	Category       *string   `json:"category,omitempty" validate:"omitnil,min=2,max=30"`
	ImageIDs       *[]string `json:"image_ids,omitempty" validate:"omitnil,max=3,dive,min=1"`
	SEOTitle       *string   `json:"seo_title,omitempty" validate:"omitnil,max=60"`
	SEODescription *string   `json:"seo_description,omitempty" validate:"omitnil,max=160"`
	Status         *Status   `json:"status,omitempty" validate:"omitnil,oneof=draft published archived"`
}

// Apply copies the present fields onto p. It does not touch timestamps.
func (patch ProjectPatch) Apply(p *Project) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Slug != nil {
		p.Slug = *patch.Slug
	}
	if patch.ProjectDetails != nil {
		p.ProjectDetails = *patch.ProjectDetails
	}
	if patch.Excerpt != nil {
		p.Excerpt = patch.Excerpt
	}
	if patch.LiveURL != nil {
		p.LiveURL = patch.LiveURL
	}
	if patch.GithubURL != nil {
		p.GithubURL = patch.GithubURL
	}
	if patch.Technologies != nil {
		p.Technologies = append([]string(nil), (*patch.Technologies)...)
	}
	if patch.Features != nil {
		p.Features = append([]string(nil), (*patch.Features)...)
	}
	if patch.Tags != nil {
		p.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.ImageIDs != nil {
		p.ImageIDs = append([]string(nil), (*patch.ImageIDs)...)
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
func (patch ProjectPatch) Empty() bool {
	return patch == ProjectPatch{}
}
