package blog

import (
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

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Complete Guide: HVAC Tips!": "complete-guide-hvac-tips",
		"  Hello   World  ":          "hello-world",
		"Already-Fine-123":           "already-fine-123",
		"---":                        "",
		"Énergie solaire":            "nergie-solaire",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugifyShape(t *testing.T) {
	for _, title := range []string{"A--B", "!!lead", "trail!!", "MiXeD CaSe 42"} {
		s := Slugify(title)
		if s == "" {
			continue
		}
		if !ValidSlug(s) {
			t.Errorf("Slugify(%q) = %q is not a valid slug", title, s)
		}
	}
}

func TestScoreSEOMaxAndIndependence(t *testing.T) {
	full := SEOInput{
		Title:      models.Localized{EN: "Guide", AR: "دليل"},
		ExcerptEN:  "A short excerpt.",
		SEOTitle:   "HVAC maintenance guide",
		SEODesc:    "Learn how to keep your HVAC system efficient with seasonal maintenance and simple filter care.",
		Slug:       "hvac-guide",
		CoverImage: "/uploads/cover.jpg",
		Tags:       []string{"hvac"},
		ContentEN:  longContent(320),
	}

	report := ScoreSEO(full)
	if report.Max != 100 {
		t.Fatalf("max = %d, want 100", report.Max)
	}
	if report.Score != 100 {
		t.Fatalf("full input score = %d, want 100", report.Score)
	}
	if len(report.Checks) != 9 {
		t.Fatalf("expected 9 checks, got %d", len(report.Checks))
	}

	// Dropping one field only removes that field's contribution.
	noCover := full
	noCover.CoverImage = ""
	if got := ScoreSEO(noCover).Score; got != 90 {
		t.Errorf("score without cover = %d, want 90", got)
	}

	noDesc := full
	noDesc.SEODesc = "too short"
	if got := ScoreSEO(noDesc).Score; got != 80 {
		t.Errorf("score without seo_desc = %d, want 80", got)
	}
}

func TestCreateDerivesSlugAndContent(t *testing.T) {
	svc := setupService(t)

	post, err := svc.Create("author-1", &CreateBlogDTO{
		Title:    models.Localized{EN: "Complete Guide: HVAC Tips!", AR: "دليل"},
		Category: "hvac",
		BlocksEN: models.BlockList{
			models.HeadingBlock{Level: 1, Text: "Title"},
			models.ParagraphBlock{Text: "Body text."},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.Slug != "complete-guide-hvac-tips" {
		t.Errorf("slug = %q", post.Slug)
	}
	if post.Status != models.BlogStatusDraft {
		t.Errorf("status = %q, want draft", post.Status)
	}
	if post.Content.EN != "# Title\n\nBody text." {
		t.Errorf("flattened content = %q", post.Content.EN)
	}
}

func TestCreateAssignsMissingBlockIDs(t *testing.T) {
	svc := setupService(t)

	post, err := svc.Create("author-1", &CreateBlogDTO{
		Title:    models.Localized{EN: "Editor draft"},
		Category: "hvac",
		BlocksEN: models.BlockList{
			models.ParagraphBlock{Text: "one"},
			withTestID(models.ParagraphBlock{Text: "two"}, "mine"),
			models.ParagraphBlock{Text: "three"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ids := []string{
		post.BlocksEN[0].BlockID(),
		post.BlocksEN[1].BlockID(),
		post.BlocksEN[2].BlockID(),
	}
	if ids[1] != "mine" {
		t.Errorf("explicit id replaced: %q", ids[1])
	}
	if ids[0] == "" || ids[2] == "" || ids[0] == ids[2] {
		t.Errorf("missing ids not filled uniquely: %v", ids)
	}
	if err := post.BlocksEN.ValidateIDs(); err != nil {
		t.Errorf("stored sequence should validate: %v", err)
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc := setupService(t)

	first := &CreateBlogDTO{
		Title:    models.Localized{EN: "Water heaters"},
		Category: "plumbing",
	}
	if _, err := svc.Create("a", first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create("a", &CreateBlogDTO{
		Title:    models.Localized{EN: "Water Heaters!"},
		Category: "plumbing",
	})
	if err != ErrSlugTaken {
		t.Fatalf("err = %v, want ErrSlugTaken", err)
	}
}

func TestUpdateBlocksRegeneratesContent(t *testing.T) {
	svc := setupService(t)

	post, err := svc.Create("a", &CreateBlogDTO{
		Title:    models.Localized{EN: "Filters"},
		Category: "hvac",
		BlocksEN: models.BlockList{models.ParagraphBlock{Text: "Old."}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	blocks := models.BlockList{
		models.HeadingBlock{Level: 2, Text: "New section"},
	}
	updated, err := svc.Update(post.ID, &UpdateBlogDTO{BlocksEN: &blocks})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content.EN != "## New section" {
		t.Errorf("content = %q, want regenerated from blocks", updated.Content.EN)
	}
}

func TestUpdateRejectsDuplicateBlockIDs(t *testing.T) {
	svc := setupService(t)

	post, err := svc.Create("a", &CreateBlogDTO{
		Title:    models.Localized{EN: "Dup"},
		Category: "hvac",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := models.BlockList{
		withTestID(models.ParagraphBlock{Text: "one"}, "x"),
		withTestID(models.ParagraphBlock{Text: "two"}, "x"),
	}
	if _, err := svc.Update(post.ID, &UpdateBlogDTO{BlocksEN: &bad}); err == nil {
		t.Fatal("expected duplicate block id error")
	}
}

func TestPublishScheduled(t *testing.T) {
	svc := setupService(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	due, err := svc.Create("a", &CreateBlogDTO{
		Title:    models.Localized{EN: "Due"},
		Category: "hvac",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Bypass applyStatus's future check to simulate a post whose time arrived.
	svc.db.Model(due).Updates(map[string]interface{}{
		"status":       models.BlogStatusScheduled,
		"scheduled_at": past,
	})

	notDue, err := svc.Create("a", &CreateBlogDTO{
		Title:       models.Localized{EN: "Not due"},
		Category:    "hvac",
		Status:      models.BlogStatusScheduled,
		ScheduledAt: &future,
	})
	if err != nil {
		t.Fatalf("Create scheduled: %v", err)
	}

	n, err := svc.PublishScheduled()
	if err != nil {
		t.Fatalf("PublishScheduled: %v", err)
	}
	if n != 1 {
		t.Fatalf("published %d posts, want 1", n)
	}

	got, _ := svc.GetByID(due.ID)
	if got.Status != models.BlogStatusPublished || got.PublishedAt == nil {
		t.Errorf("due post = %q published_at=%v", got.Status, got.PublishedAt)
	}
	still, _ := svc.GetByID(notDue.ID)
	if still.Status != models.BlogStatusScheduled {
		t.Errorf("future post flipped early: %q", still.Status)
	}
}

func TestScheduledCreateNeedsFutureTime(t *testing.T) {
	svc := setupService(t)

	past := time.Now().Add(-time.Minute)
	_, err := svc.Create("a", &CreateBlogDTO{
		Title:       models.Localized{EN: "Bad schedule"},
		Category:    "hvac",
		Status:      models.BlogStatusScheduled,
		ScheduledAt: &past,
	})
	if err != ErrScheduleInput {
		t.Fatalf("err = %v, want ErrScheduleInput", err)
	}
}

func longContent(words int) string {
	out := make([]byte, 0, words*5)
	for i := 0; i < words; i++ {
		out = append(out, "word "...)
	}
	return string(out)
}

func withTestID(b models.ParagraphBlock, id string) models.Block {
	b.ID = id
	return b
}
