package bulkimport

import (
	"strings"
	"testing"
	"time"

	"github.com/baytfix/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.BlogModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, zap.NewNop())
}

func section(meta map[string]string, body string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	for k, v := range meta {
		sb.WriteString(k + ": " + v + "\n")
	}
	sb.WriteString("---\n\n")
	sb.WriteString(body)
	return sb.String()
}

func validMeta(slug string) map[string]string {
	return map[string]string{
		"title_en":   `"Post ` + slug + `"`,
		"title_ar":   `"مقال"`,
		"slug":       slug,
		"category":   "hvac",
		"excerpt_en": `"An excerpt"`,
	}
}

func TestParseSectionCount(t *testing.T) {
	payload := strings.Join([]string{
		section(validMeta("one"), "# One\n\nFirst body."),
		section(validMeta("two"), "# Two\n\nSecond body."),
		section(validMeta("three"), "# Three\n\nThird body."),
	}, "\n---BLOG---\n")

	records := Parse(payload)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, rec := range records {
		if !rec.Valid {
			t.Errorf("record %d invalid: %v", i, rec.Problems)
		}
		if len(rec.Blocks) != 2 {
			t.Errorf("record %d has %d blocks, want 2", i, len(rec.Blocks))
		}
	}
	// Records are independent of one another.
	if records[0].Slug == records[1].Slug {
		t.Error("records share a slug")
	}
	h, ok := records[2].Blocks[0].(models.HeadingBlock)
	if !ok || h.Text != "Three" {
		t.Errorf("record 2 heading = %+v", records[2].Blocks[0])
	}
}

func TestParseMissingRequiredFields(t *testing.T) {
	cases := []string{"title_en", "slug", "category", "excerpt_en"}
	for _, drop := range cases {
		meta := validMeta("a-post")
		delete(meta, drop)
		if drop == "title_en" {
			// Without a title the slug cannot be derived either, so
			// keep the explicit one.
			meta["slug"] = "a-post"
		}
		if drop == "slug" {
			// An explicit title still derives a slug; to test a truly
			// missing slug the title must go too.
			meta["title_en"] = ""
			meta["slug"] = ""
		}

		records := Parse(section(meta, "Body."))
		if len(records) != 1 {
			t.Fatalf("%s: expected 1 record", drop)
		}
		rec := records[0]
		if rec.Valid {
			t.Errorf("record missing %s should be invalid", drop)
		}
		if rec.Selected {
			t.Errorf("record missing %s should be deselected", drop)
		}
	}
}

func TestParseDerivesSlugFromTitle(t *testing.T) {
	meta := validMeta("x")
	delete(meta, "slug")
	meta["title_en"] = `"Complete Guide: HVAC Tips!"`

	records := Parse(section(meta, "Body."))
	if records[0].Slug != "complete-guide-hvac-tips" {
		t.Errorf("derived slug = %q", records[0].Slug)
	}
}

func TestParseDateNormalization(t *testing.T) {
	meta := validMeta("dated")
	meta["scheduled_at"] = "2026-09-15"
	meta["published_at"] = "2026-09-01T10:30:00Z"

	rec := Parse(section(meta, "Body."))[0]
	if rec.ScheduledAt == nil || rec.ScheduledAt.Format("2006-01-02") != "2026-09-15" {
		t.Errorf("scheduled_at = %v", rec.ScheduledAt)
	}
	if rec.PublishedAt == nil || !rec.PublishedAt.Equal(time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("published_at = %v", rec.PublishedAt)
	}
}

func TestParseTagsArray(t *testing.T) {
	meta := validMeta("tagged")
	meta["tags"] = `["hvac", "maintenance", seasonal]`

	rec := Parse(section(meta, "Body."))[0]
	want := []string{"hvac", "maintenance", "seasonal"}
	if len(rec.Tags) != len(want) {
		t.Fatalf("tags = %v", rec.Tags)
	}
	for i := range want {
		if rec.Tags[i] != want[i] {
			t.Errorf("tag %d = %q, want %q", i, rec.Tags[i], want[i])
		}
	}
}

func TestPreviewFlagsDuplicateSlugAsWarning(t *testing.T) {
	svc := setupService(t)
	svc.db.Create(&models.BlogModel{Slug: "existing-post", Category: "hvac"})

	records, err := svc.Preview(section(validMeta("existing-post"), "Body."))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	rec := records[0]
	if !rec.Valid {
		t.Errorf("duplicate slug must not invalidate the record: %v", rec.Problems)
	}
	if !rec.DuplicateSlug {
		t.Error("expected duplicate_slug flag")
	}
	if !rec.Selected {
		t.Error("duplicate records stay selected")
	}
}

func TestImportPersistsValidRecordsOnly(t *testing.T) {
	svc := setupService(t)

	invalid := validMeta("broken")
	delete(invalid, "category")

	payload := strings.Join([]string{
		section(validMeta("good-one"), "# Good\n\nBody."),
		section(invalid, "Body."),
	}, "\n---BLOG---\n")

	result, err := svc.Import("admin-1", payload, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}

	var post models.BlogModel
	if err := svc.db.First(&post, "slug = ?", "good-one").Error; err != nil {
		t.Fatalf("imported post missing: %v", err)
	}
	if post.Status != models.BlogStatusDraft {
		t.Errorf("status = %q, want draft", post.Status)
	}
	if post.Content.EN == "" {
		t.Error("flattened content not derived from blocks")
	}
	if post.AuthorID != "admin-1" {
		t.Errorf("author = %q", post.AuthorID)
	}
}

func TestImportRenamesDuplicateSlug(t *testing.T) {
	svc := setupService(t)
	svc.db.Create(&models.BlogModel{Slug: "taken", Category: "hvac"})

	result, err := svc.Import("admin-1", section(validMeta("taken"), "Body."), nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Renamed) != 1 || result.Renamed[0] != "taken-2" {
		t.Errorf("renamed = %v, want [taken-2]", result.Renamed)
	}
}
