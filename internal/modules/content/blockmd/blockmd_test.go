package blockmd

import (
	"testing"

	"github.com/baytfix/core/internal/models"
)

func TestParseHeadingAndParagraph(t *testing.T) {
	blocks, err := Parse("# Title\n\nBody text.")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	h, ok := blocks[0].(models.HeadingBlock)
	if !ok {
		t.Fatalf("block 0 is %T, want HeadingBlock", blocks[0])
	}
	if h.Level != 1 || h.Text != "Title" {
		t.Errorf("heading = {%d %q}, want {1 \"Title\"}", h.Level, h.Text)
	}

	p, ok := blocks[1].(models.ParagraphBlock)
	if !ok {
		t.Fatalf("block 1 is %T, want ParagraphBlock", blocks[1])
	}
	if p.Text != "Body text." {
		t.Errorf("paragraph = %q, want \"Body text.\"", p.Text)
	}
}

func TestParseAssignsSequentialIDs(t *testing.T) {
	blocks, err := Parse("# A\n\nB\n\n- one\n- two")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"b1", "b2", "b3"}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(blocks))
	}
	for i, id := range want {
		if blocks[i].BlockID() != id {
			t.Errorf("block %d id = %q, want %q", i, blocks[i].BlockID(), id)
		}
	}
	if err := blocks.ValidateIDs(); err != nil {
		t.Errorf("ValidateIDs: %v", err)
	}
}

func TestParseListKinds(t *testing.T) {
	blocks, err := Parse("1. first\n2. second\n\n- [x] done\n- [ ] pending")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	list, ok := blocks[0].(models.ListBlock)
	if !ok {
		t.Fatalf("block 0 is %T, want ListBlock", blocks[0])
	}
	if !list.Ordered || len(list.Items) != 2 || list.Items[0] != "first" {
		t.Errorf("unexpected ordered list: %+v", list)
	}

	check, ok := blocks[1].(models.ChecklistBlock)
	if !ok {
		t.Fatalf("block 1 is %T, want ChecklistBlock", blocks[1])
	}
	if len(check.Items) != 2 {
		t.Fatalf("expected 2 checklist items, got %d", len(check.Items))
	}
	if !check.Items[0].Checked || check.Items[0].Text != "done" {
		t.Errorf("item 0 = %+v", check.Items[0])
	}
	if check.Items[1].Checked || check.Items[1].Text != "pending" {
		t.Errorf("item 1 = %+v", check.Items[1])
	}
}

func TestParseTable(t *testing.T) {
	md := "| Service | Price |\n| --- | --- |\n| HVAC | 250 |\n| Plumbing | 120 |"
	blocks, err := Parse(md)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	tb, ok := blocks[0].(models.TableBlock)
	if !ok {
		t.Fatalf("block is %T, want TableBlock", blocks[0])
	}
	if len(tb.Headers) != 2 || tb.Headers[0] != "Service" {
		t.Errorf("headers = %v", tb.Headers)
	}
	if len(tb.Rows) != 2 || tb.Rows[1][0] != "Plumbing" {
		t.Errorf("rows = %v", tb.Rows)
	}
}

func TestParseCalloutAndQuote(t *testing.T) {
	md := "> [!WARNING]\n> Turn off the breaker first.\n\n> Measure twice.\n>\n> -- Old proverb"
	blocks, err := Parse(md)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	callout, ok := blocks[0].(models.CalloutBlock)
	if !ok {
		t.Fatalf("block 0 is %T, want CalloutBlock", blocks[0])
	}
	if callout.Variant != "warning" || callout.Text != "Turn off the breaker first." {
		t.Errorf("callout = %+v", callout)
	}

	quote, ok := blocks[1].(models.QuoteBlock)
	if !ok {
		t.Fatalf("block 1 is %T, want QuoteBlock", blocks[1])
	}
	if quote.Text != "Measure twice." || quote.Source != "Old proverb" {
		t.Errorf("quote = %+v", quote)
	}
}

func TestParseImageAndDivider(t *testing.T) {
	blocks, err := Parse("![boiler](https://cdn.example.com/boiler.jpg \"New boiler\")\n\n---\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	img, ok := blocks[0].(models.ImageBlock)
	if !ok {
		t.Fatalf("block 0 is %T, want ImageBlock", blocks[0])
	}
	if img.Src != "https://cdn.example.com/boiler.jpg" || img.Alt != "boiler" || img.Caption != "New boiler" {
		t.Errorf("image = %+v", img)
	}
	if _, ok := blocks[1].(models.DividerBlock); !ok {
		t.Errorf("block 1 is %T, want DividerBlock", blocks[1])
	}
}

func TestRenderRoundTrip(t *testing.T) {
	md := "## Maintenance checklist\n\nKeep filters clean.\n\n- [x] replace filter\n- [ ] check seals\n\n> [!TIP]\n> Book a yearly inspection.\n\n| Part | Interval |\n| --- | --- |\n| Filter | 3 months |"

	first, err := Parse(md)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rendered := Render(first)
	second, err := Parse(rendered)
	if err != nil {
		t.Fatalf("Parse rendered: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("round trip changed block count: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Kind() != second[i].Kind() {
			t.Errorf("block %d kind %s -> %s", i, first[i].Kind(), second[i].Kind())
		}
	}
}

func TestRenderStatsFallsBackToList(t *testing.T) {
	md := Render(models.BlockList{models.StatsBlock{Items: []models.StatItem{
		{Value: "40%", Label: "energy saved"},
		{Value: "2h", Label: "average job time"},
	}}})
	want := "- **40%** energy saved\n- **2h** average job time"
	if md != want {
		t.Errorf("rendered stats = %q, want %q", md, want)
	}
}
