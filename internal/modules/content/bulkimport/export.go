package bulkimport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/baytfix/core/internal/models"
)

// ExportZip writes every blog post as a markdown file with YAML-style
// frontmatter into a zip archive. The body is the English markdown; all
// other fields, including the Arabic texts, live in the frontmatter so an
// exported archive can be fed back through the importer.
func (s *Service) ExportZip() ([]byte, string, error) {
	var posts []models.BlogModel
	if err := s.db.Find(&posts).Error; err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)

	for _, p := range posts {
		name := p.Slug
		if name == "" {
			name = p.ID
		}
		f, err := w.Create(fmt.Sprintf("blogs/%s.md", name))
		if err != nil {
			return nil, "", err
		}
		if _, err := f.Write([]byte(exportMarkdown(&p))); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("blog-export-%s.zip", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func exportMarkdown(p *models.BlogModel) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	writeMeta := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s: %q\n", key, value)
		}
	}

	writeMeta("slug", p.Slug)
	writeMeta("title_en", p.Title.EN)
	writeMeta("title_ar", p.Title.AR)
	writeMeta("excerpt_en", p.Excerpt.EN)
	writeMeta("excerpt_ar", p.Excerpt.AR)
	writeMeta("seo_title_en", p.SEOTitle.EN)
	writeMeta("seo_title_ar", p.SEOTitle.AR)
	writeMeta("seo_desc_en", p.SEODesc.EN)
	writeMeta("seo_desc_ar", p.SEODesc.AR)
	writeMeta("category", p.Category)
	writeMeta("cover_image", p.CoverImage)
	writeMeta("status", p.Status)
	if len(p.Tags) > 0 {
		quoted := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		fmt.Fprintf(&sb, "tags: [%s]\n", strings.Join(quoted, ", "))
	}
	if p.ScheduledAt != nil {
		writeMeta("scheduled_at", p.ScheduledAt.Format(time.RFC3339))
	}
	if p.PublishedAt != nil {
		writeMeta("published_at", p.PublishedAt.Format(time.RFC3339))
	}
	sb.WriteString("---\n\n")
	sb.WriteString(p.Content.EN)
	sb.WriteString("\n")
	return sb.String()
}
