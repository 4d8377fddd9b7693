package blog

import (
	"time"

	"github.com/baytfix/core/internal/models"
)

type CreateBlogDTO struct {
	Slug        string           `json:"slug"`
	Title       models.Localized `json:"title"`
	Excerpt     models.Localized `json:"excerpt"`
	BlocksEN    models.BlockList `json:"blocks_en"`
	BlocksAR    models.BlockList `json:"blocks_ar"`
	SEOTitle    models.Localized `json:"seo_title"`
	SEODesc     models.Localized `json:"seo_desc"`
	Category    string           `json:"category" binding:"required"`
	Tags        []string         `json:"tags"`
	CoverImage  string           `json:"cover_image"`
	Status      string           `json:"status" binding:"omitempty,oneof=draft published scheduled"`
	ScheduledAt *time.Time       `json:"scheduled_at"`
}

type UpdateBlogDTO struct {
	Slug        *string           `json:"slug"`
	Title       *models.Localized `json:"title"`
	Excerpt     *models.Localized `json:"excerpt"`
	BlocksEN    *models.BlockList `json:"blocks_en"`
	BlocksAR    *models.BlockList `json:"blocks_ar"`
	SEOTitle    *models.Localized `json:"seo_title"`
	SEODesc     *models.Localized `json:"seo_desc"`
	Category    *string           `json:"category"`
	Tags        *[]string         `json:"tags"`
	CoverImage  *string           `json:"cover_image"`
	Status      *string           `json:"status" binding:"omitempty,oneof=draft published scheduled"`
	ScheduledAt *time.Time        `json:"scheduled_at"`
}

type SEOScoreDTO struct {
	Title      models.Localized `json:"title"`
	ExcerptEN  string           `json:"excerpt_en"`
	SEOTitle   string           `json:"seo_title"`
	SEODesc    string           `json:"seo_desc"`
	Slug       string           `json:"slug"`
	CoverImage string           `json:"cover_image"`
	Tags       []string         `json:"tags"`
	ContentEN  string           `json:"content_en"`
}

type ListQuery struct {
	Category string
	Tag      string
	Status   string
	Search   string
}
