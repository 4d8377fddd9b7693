package blog

import (
	"strings"
	"unicode/utf8"

	"github.com/baytfix/core/internal/models"
)

// SEOCheck is one scored readiness check on a post's editable fields.
type SEOCheck struct {
	Key    string `json:"key"`
	Points int    `json:"points"`
	Passed bool   `json:"passed"`
}

// SEOReport is the score breakdown returned to the editor.
type SEOReport struct {
	Score  int        `json:"score"`
	Max    int        `json:"max"`
	Checks []SEOCheck `json:"checks"`
}

// SEOInput is the slice of post fields the score depends on.
type SEOInput struct {
	Title      models.Localized
	ExcerptEN  string
	SEOTitle   string
	SEODesc    string
	Slug       string
	CoverImage string
	Tags       []string
	ContentEN  string
}

// ScoreSEO runs nine independent checks, each worth 10 or 20 points, on the
// given fields. The total never exceeds 100 and each field contributes only
// through its own check.
func ScoreSEO(in SEOInput) SEOReport {
	descLen := utf8.RuneCountInString(strings.TrimSpace(in.SEODesc))
	titleLen := utf8.RuneCountInString(strings.TrimSpace(in.SEOTitle))

	checks := []SEOCheck{
		{Key: "title_en", Points: 10, Passed: strings.TrimSpace(in.Title.EN) != ""},
		{Key: "title_ar", Points: 10, Passed: strings.TrimSpace(in.Title.AR) != ""},
		{Key: "excerpt_en", Points: 10, Passed: strings.TrimSpace(in.ExcerptEN) != ""},
		{Key: "seo_title_length", Points: 10, Passed: titleLen >= 1 && titleLen <= 60},
		{Key: "seo_desc_length", Points: 20, Passed: descLen >= 50 && descLen <= 160},
		{Key: "slug_format", Points: 10, Passed: ValidSlug(in.Slug)},
		{Key: "cover_image", Points: 10, Passed: strings.TrimSpace(in.CoverImage) != ""},
		{Key: "has_tags", Points: 10, Passed: len(in.Tags) > 0},
		{Key: "content_length", Points: 10, Passed: wordCount(in.ContentEN) >= 300},
	}

	report := SEOReport{Checks: checks}
	for _, c := range checks {
		report.Max += c.Points
		if c.Passed {
			report.Score += c.Points
		}
	}
	return report
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
