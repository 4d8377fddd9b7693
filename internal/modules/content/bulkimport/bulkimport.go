// Package bulkimport parses multi-post markdown payloads into blog records
// and exports the blog table back to a markdown archive.
package bulkimport

import (
	"fmt"
	"strings"
	"time"

	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/modules/content/blockmd"
	"github.com/baytfix/core/internal/modules/content/blog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Record is one parsed section of a bulk-import payload, validated but not
// yet persisted.
type Record struct {
	Index       int              `json:"index"`
	Slug        string           `json:"slug"`
	Title       models.Localized `json:"title"`
	Excerpt     models.Localized `json:"excerpt"`
	SEOTitle    models.Localized `json:"seo_title"`
	SEODesc     models.Localized `json:"seo_desc"`
	Category    string           `json:"category"`
	Tags        []string         `json:"tags"`
	CoverImage  string           `json:"cover_image"`
	Status      string           `json:"status"`
	ScheduledAt *time.Time       `json:"scheduled_at"`
	PublishedAt *time.Time       `json:"published_at"`
	Blocks      models.BlockList `json:"blocks_en"`

	Valid         bool     `json:"valid"`
	Selected      bool     `json:"selected"`
	DuplicateSlug bool     `json:"duplicate_slug"`
	Problems      []string `json:"problems"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Parse splits a payload on the section delimiter and parses every section
// into an independent record. N sections always yield N records; broken
// sections come back invalid rather than dropped.
func Parse(payload string) []Record {
	sections := SplitSections(payload)
	records := make([]Record, 0, len(sections))
	for i, section := range sections {
		records = append(records, parseSection(i, section))
	}
	return records
}

func parseSection(index int, section string) Record {
	meta, arrays, body := splitFrontmatter(section)

	rec := Record{
		Index: index,
		Slug:  strings.TrimSpace(meta["slug"]),
		Title: models.Localized{
			EN: meta["title_en"],
			AR: meta["title_ar"],
		},
		Excerpt: models.Localized{
			EN: meta["excerpt_en"],
			AR: meta["excerpt_ar"],
		},
		SEOTitle: models.Localized{
			EN: meta["seo_title_en"],
			AR: meta["seo_title_ar"],
		},
		SEODesc: models.Localized{
			EN: meta["seo_desc_en"],
			AR: meta["seo_desc_ar"],
		},
		Category:   strings.TrimSpace(meta["category"]),
		CoverImage: meta["cover_image"],
		Status:     strings.TrimSpace(meta["status"]),
		Tags:       arrays["tags"],
	}

	if v, ok := meta["scheduled_at"]; ok {
		if t, ok := parseDate(v); ok {
			rec.ScheduledAt = t
		} else {
			rec.Problems = append(rec.Problems, "unparseable scheduled_at")
		}
	}
	if v, ok := meta["published_at"]; ok {
		if t, ok := parseDate(v); ok {
			rec.PublishedAt = t
		} else {
			rec.Problems = append(rec.Problems, "unparseable published_at")
		}
	}

	if rec.Slug == "" && rec.Title.EN != "" {
		rec.Slug = blog.Slugify(rec.Title.EN)
	}

	blocks, err := blockmd.Parse(body)
	if err != nil {
		rec.Problems = append(rec.Problems, fmt.Sprintf("body: %v", err))
	}
	rec.Blocks = blocks

	for _, missing := range []struct {
		key   string
		empty bool
	}{
		{"title_en", strings.TrimSpace(rec.Title.EN) == ""},
		{"slug", rec.Slug == ""},
		{"category", rec.Category == ""},
		{"excerpt_en", strings.TrimSpace(rec.Excerpt.EN) == ""},
	} {
		if missing.empty {
			rec.Problems = append(rec.Problems, "missing "+missing.key)
		}
	}
	if rec.Slug != "" && !blog.ValidSlug(rec.Slug) {
		rec.Problems = append(rec.Problems, "malformed slug")
	}

	rec.Valid = len(rec.Problems) == 0
	rec.Selected = rec.Valid
	return rec
}

// Preview parses the payload and flags records whose slug already exists.
// Duplicates stay selected; they are a warning, not an error.
func (s *Service) Preview(payload string) ([]Record, error) {
	records := Parse(payload)
	for i := range records {
		if records[i].Slug == "" {
			continue
		}
		var count int64
		err := s.db.Model(&models.BlogModel{}).
			Where("slug = ?", records[i].Slug).Count(&count).Error
		if err != nil {
			return nil, err
		}
		records[i].DuplicateSlug = count > 0
	}
	return records, nil
}

// ImportResult summarizes one bulk-import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Renamed  []string `json:"renamed_slugs"`
}

// Import persists the selected records. Invalid records are always skipped.
// A record whose slug collides with an existing row is imported under a
// numbered variant of its slug.
func (s *Service) Import(authorID, payload string, selected []int) (*ImportResult, error) {
	records := Parse(payload)

	pick := map[int]bool{}
	for _, idx := range selected {
		pick[idx] = true
	}
	// No explicit selection imports every valid record.
	all := len(selected) == 0

	result := &ImportResult{Renamed: []string{}}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			if !rec.Valid || !(all || pick[rec.Index]) {
				result.Skipped++
				continue
			}

			slug, renamed, err := dedupeSlug(tx, rec.Slug)
			if err != nil {
				return err
			}
			if renamed {
				result.Renamed = append(result.Renamed, slug)
			}

			post := models.BlogModel{
				Slug:        slug,
				Title:       rec.Title,
				Excerpt:     rec.Excerpt,
				SEOTitle:    rec.SEOTitle,
				SEODesc:     rec.SEODesc,
				Category:    rec.Category,
				Tags:        models.StringArray(rec.Tags),
				CoverImage:  rec.CoverImage,
				BlocksEN:    rec.Blocks,
				BlocksAR:    models.BlockList{},
				AuthorID:    authorID,
				Status:      models.BlogStatusDraft,
				ScheduledAt: rec.ScheduledAt,
				PublishedAt: rec.PublishedAt,
			}
			post.Content = models.Localized{EN: blockmd.Render(post.BlocksEN)}

			switch rec.Status {
			case models.BlogStatusPublished:
				post.Status = models.BlogStatusPublished
				if post.PublishedAt == nil {
					now := time.Now()
					post.PublishedAt = &now
				}
			case models.BlogStatusScheduled:
				if post.ScheduledAt != nil {
					post.Status = models.BlogStatusScheduled
				}
			}

			if err := tx.Create(&post).Error; err != nil {
				return err
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bulk import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func dedupeSlug(tx *gorm.DB, slug string) (string, bool, error) {
	candidate := slug
	for n := 2; ; n++ {
		var count int64
		if err := tx.Model(&models.BlogModel{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", false, err
		}
		if count == 0 {
			return candidate, candidate != slug, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
}
