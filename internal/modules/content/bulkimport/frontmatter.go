package bulkimport

import (
	"strings"
	"time"
)

// sectionDelimiter separates documents inside one bulk-import payload.
const sectionDelimiter = "---BLOG---"

// SplitSections cuts a multi-document payload into per-post chunks. A
// payload with no delimiter is a single section.
func SplitSections(payload string) []string {
	var sections []string
	for _, chunk := range strings.Split(payload, sectionDelimiter) {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			sections = append(sections, chunk)
		}
	}
	return sections
}

// splitFrontmatter separates an optional leading frontmatter header from
// the markdown body.
func splitFrontmatter(section string) (meta map[string]string, tags map[string][]string, body string) {
	meta = map[string]string{}
	tags = map[string][]string{}
	body = section

	lines := strings.Split(section, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return meta, tags, body
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return meta, tags, body
	}

	for _, line := range lines[1:end] {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			tags[key] = parseArray(value)
			continue
		}
		meta[key] = unquote(value)
	}

	body = strings.TrimSpace(strings.Join(lines[end+1:], "\n"))
	return meta, tags, body
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

func parseArray(v string) []string {
	inner := strings.TrimSpace(v[1 : len(v)-1])
	if inner == "" {
		return []string{}
	}
	parts := strings.Split(inner, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := unquote(strings.TrimSpace(p)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// dateLayouts covers the formats seen in hand-written frontmatter.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

// parseDate normalizes a hand-written date to a concrete time, UTC when
// the input carries no zone.
func parseDate(v string) (*time.Time, bool) {
	v = strings.TrimSpace(unquote(v))
	if v == "" {
		return nil, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}
