// Package blockmd converts between markdown text and the structured block
// sequence posts are stored as. Blocks are the canonical representation;
// markdown is the import format and the flattened read form.
package blockmd

import (
	"regexp"
	"strings"

	"github.com/baytfix/core/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var mdEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
	),
)

var (
	checkboxPrefix = regexp.MustCompile(`^\[( |x|X)\]\s*`)
	calloutMarker  = regexp.MustCompile(`^\[!(\w+)\]\s*`)
	quoteSource    = regexp.MustCompile(`^--\s+(.+)$`)
)

// Parse converts markdown into a block sequence. Block ids are assigned
// sequentially (b1, b2, ...) in document order.
func Parse(markdown string) (models.BlockList, error) {
	source := []byte(markdown)
	doc := mdEngine.Parser().Parse(text.NewReader(source))

	blocks := models.BlockList{}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		parsed, err := parseNode(n, source)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, parsed...)
	}
	return blocks.EnsureIDs(), nil
}

func parseNode(n ast.Node, source []byte) ([]models.Block, error) {
	switch v := n.(type) {
	case *ast.Heading:
		return []models.Block{models.HeadingBlock{
			Level: v.Level,
			Text:  rawLines(v, source, " "),
		}}, nil

	case *ast.Paragraph:
		if img := soleImage(v, source); img != nil {
			return []models.Block{models.ImageBlock{
				Src:     string(img.Destination),
				Alt:     nodeText(img, source),
				Caption: string(img.Title),
			}}, nil
		}
		return []models.Block{models.ParagraphBlock{
			Text: rawLines(v, source, "\n"),
		}}, nil

	case *ast.List:
		return []models.Block{parseList(v, source)}, nil

	case *extast.Table:
		return []models.Block{parseTable(v, source)}, nil

	case *ast.Blockquote:
		return []models.Block{parseBlockquote(v, source)}, nil

	case *ast.ThematicBreak:
		return []models.Block{models.DividerBlock{}}, nil

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		// No code block variant; keep the text as a paragraph so
		// nothing silently disappears on import.
		return []models.Block{models.ParagraphBlock{
			Text: rawLines(n, source, "\n"),
		}}, nil

	case *ast.HTMLBlock:
		return nil, nil

	default:
		txt := rawLines(n, source, "\n")
		if strings.TrimSpace(txt) == "" {
			return nil, nil
		}
		return []models.Block{models.ParagraphBlock{Text: txt}}, nil
	}
}

func parseList(list *ast.List, source []byte) models.Block {
	items := make([]string, 0, list.ChildCount())
	checks := make([]models.ChecklistItem, 0, list.ChildCount())
	isChecklist := true

	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		txt := listItemText(li, source)
		if m := checkboxPrefix.FindStringSubmatch(txt); m != nil {
			checks = append(checks, models.ChecklistItem{
				Text:    checkboxPrefix.ReplaceAllString(txt, ""),
				Checked: m[1] == "x" || m[1] == "X",
			})
		} else {
			isChecklist = false
		}
		items = append(items, txt)
	}

	if isChecklist && len(checks) > 0 {
		return models.ChecklistBlock{Items: checks}
	}
	return models.ListBlock{Ordered: list.IsOrdered(), Items: items}
}

func parseTable(table *extast.Table, source []byte) models.Block {
	tb := models.TableBlock{Headers: []string{}, Rows: [][]string{}}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		cells := []string{}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, rawLines(cell, source, " "))
		}
		if _, isHeader := row.(*extast.TableHeader); isHeader {
			tb.Headers = cells
		} else {
			tb.Rows = append(tb.Rows, cells)
		}
	}
	return tb
}

func parseBlockquote(bq *ast.Blockquote, source []byte) models.Block {
	var lines []string
	for p := bq.FirstChild(); p != nil; p = p.NextSibling() {
		lines = append(lines, strings.Split(rawLines(p, source, "\n"), "\n")...)
	}

	if len(lines) > 0 {
		if m := calloutMarker.FindStringSubmatch(lines[0]); m != nil {
			rest := calloutMarker.ReplaceAllString(lines[0], "")
			body := append([]string{}, lines[1:]...)
			if rest != "" {
				body = append([]string{rest}, body...)
			}
			return models.CalloutBlock{
				Variant: strings.ToLower(m[1]),
				Text:    strings.TrimSpace(strings.Join(body, "\n")),
			}
		}
	}

	attribution := ""
	if n := len(lines); n > 0 {
		if m := quoteSource.FindStringSubmatch(strings.TrimSpace(lines[n-1])); m != nil {
			attribution = m[1]
			lines = lines[:n-1]
		}
	}
	return models.QuoteBlock{
		Text:   strings.TrimSpace(strings.Join(lines, "\n")),
		Source: attribution,
	}
}

// rawLines joins the raw source segments of a block node, preserving any
// inline markdown the author wrote.
func rawLines(n ast.Node, source []byte, sep string) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimRight(string(seg.Value(source)), "\r\n "))
	}
	return strings.TrimSpace(strings.Join(parts, sep))
}

func listItemText(li ast.Node, source []byte) string {
	var parts []string
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			parts = append(parts, rawLines(c, source, " "))
		case *ast.List:
			// Nested lists flatten into the parent item.
			for sub := c.FirstChild(); sub != nil; sub = sub.NextSibling() {
				parts = append(parts, listItemText(sub, source))
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func soleImage(p *ast.Paragraph, source []byte) *ast.Image {
	var img *ast.Image
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Image:
			if img != nil {
				return nil
			}
			img = v
		case *ast.Text:
			if strings.TrimSpace(string(v.Segment.Value(source))) != "" {
				return nil
			}
		default:
			return nil
		}
	}
	return img
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
	}
	return sb.String()
}
