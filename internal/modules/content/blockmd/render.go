package blockmd

import (
	"fmt"
	"strings"

	"github.com/baytfix/core/internal/models"
)

// Render flattens a block sequence back into markdown. Every variant has a
// markdown form; stats fall back to a plain list since markdown has no
// native equivalent.
func Render(blocks models.BlockList) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := renderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderBlock(b models.Block) string {
	switch v := b.(type) {
	case models.HeadingBlock:
		level := v.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return strings.Repeat("#", level) + " " + v.Text

	case models.ParagraphBlock:
		return v.Text

	case models.ListBlock:
		lines := make([]string, 0, len(v.Items))
		for i, item := range v.Items {
			if v.Ordered {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
			} else {
				lines = append(lines, "- "+item)
			}
		}
		return strings.Join(lines, "\n")

	case models.ImageBlock:
		if v.Caption != "" {
			return fmt.Sprintf("![%s](%s %q)", v.Alt, v.Src, v.Caption)
		}
		return fmt.Sprintf("![%s](%s)", v.Alt, v.Src)

	case models.TableBlock:
		return renderTable(v)

	case models.ChecklistBlock:
		lines := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			mark := " "
			if item.Checked {
				mark = "x"
			}
			lines = append(lines, fmt.Sprintf("- [%s] %s", mark, item.Text))
		}
		return strings.Join(lines, "\n")

	case models.CalloutBlock:
		variant := v.Variant
		if variant == "" {
			variant = "info"
		}
		return quoteLines("[!"+strings.ToUpper(variant)+"]\n"+v.Text, "")

	case models.QuoteBlock:
		return quoteLines(v.Text, v.Source)

	case models.StatsBlock:
		lines := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			lines = append(lines, fmt.Sprintf("- **%s** %s", item.Value, item.Label))
		}
		return strings.Join(lines, "\n")

	case models.DividerBlock:
		return "---"

	default:
		return ""
	}
}

func renderTable(t models.TableBlock) string {
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return ""
	}
	row := func(cells []string) string {
		return "| " + strings.Join(cells, " | ") + " |"
	}

	width := len(t.Headers)
	for _, r := range t.Rows {
		if len(r) > width {
			width = len(r)
		}
	}

	headers := pad(t.Headers, width)
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}

	lines := []string{row(headers), row(sep)}
	for _, r := range t.Rows {
		lines = append(lines, row(pad(r, width)))
	}
	return strings.Join(lines, "\n")
}

func pad(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}

func quoteLines(text, attribution string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	if attribution != "" {
		lines = append(lines, ">", "> -- "+attribution)
	}
	return strings.Join(lines, "\n")
}
