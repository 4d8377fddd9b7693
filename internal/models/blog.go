package models

import "time"

// Blog post lifecycle states. Scheduled posts are flipped to published by
// the publish_scheduled cron job once ScheduledAt has passed.
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusScheduled = "scheduled"
)

// BlogModel is a bilingual blog post. Structured blocks are canonical; the
// flattened Content markdown pair is regenerated from blocks on every write
// that touches them, never edited independently.
type BlogModel struct {
	Base
	Slug        string      `json:"slug"         gorm:"uniqueIndex;not null"`
	Title       Localized   `json:"title"        gorm:"type:json"`
	Excerpt     Localized   `json:"excerpt"      gorm:"type:json"`
	Content     Localized   `json:"content"      gorm:"type:json"` // flattened markdown, derived
	BlocksEN    BlockList   `json:"blocks_en"    gorm:"type:json"`
	BlocksAR    BlockList   `json:"blocks_ar"    gorm:"type:json"`
	SEOTitle    Localized   `json:"seo_title"    gorm:"type:json"`
	SEODesc     Localized   `json:"seo_desc"     gorm:"type:json"`
	Category    string      `json:"category"     gorm:"index"`
	Tags        StringArray `json:"tags"         gorm:"type:json"`
	CoverImage  string      `json:"cover_image"`
	Status      string      `json:"status"       gorm:"index;not null;default:draft"`
	ScheduledAt *time.Time  `json:"scheduled_at" gorm:"index"`
	PublishedAt *time.Time  `json:"published_at"`
	AuthorID    string      `json:"author_id"    gorm:"index"`
	ReadCount   int         `json:"read_count"   gorm:"default:0"`
}

func (BlogModel) TableName() string { return "blogs" }
