package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBlockListTaggedRoundTrip(t *testing.T) {
	in := BlockList{
		HeadingBlock{blockBase: blockBase{ID: "b1"}, Level: 2, Text: "Filters"},
		ListBlock{blockBase: blockBase{ID: "b2"}, Ordered: true, Items: []string{"open", "swap", "close"}},
		DividerBlock{blockBase: blockBase{ID: "b3"}},
	}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"type":"list"`) {
		t.Fatalf("list block should carry its kind tag, got %s", raw)
	}

	var out BlockList
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(out))
	}
	lst, ok := out[1].(ListBlock)
	if !ok {
		t.Fatalf("expected ListBlock, got %T", out[1])
	}
	if lst.Kind() != BlockKindList || !lst.Ordered || len(lst.Items) != 3 {
		t.Fatalf("list block fields lost in round trip: %+v", lst)
	}
}

func TestBlockListRejectsUnknownKind(t *testing.T) {
	var out BlockList
	err := json.Unmarshal([]byte(`[{"id":"b1","type":"video"}]`), &out)
	if err == nil || !strings.Contains(err.Error(), "unknown block type") {
		t.Fatalf("expected unknown-kind error, got %v", err)
	}
}

func TestEnsureIDsFillsGaps(t *testing.T) {
	in := BlockList{
		ParagraphBlock{Text: "one"},
		ParagraphBlock{blockBase: blockBase{ID: "b1"}, Text: "two"},
		ParagraphBlock{Text: "three"},
	}
	out := in.EnsureIDs()

	if got := out[1].BlockID(); got != "b1" {
		t.Fatalf("explicit id must be kept, got %q", got)
	}
	if got := out[0].BlockID(); got != "b2" {
		t.Fatalf("first gap should take the next free id, got %q", got)
	}
	if got := out[2].BlockID(); got != "b3" {
		t.Fatalf("second gap should take the next free id, got %q", got)
	}
	if err := out.ValidateIDs(); err != nil {
		t.Fatalf("filled sequence should validate: %v", err)
	}
	// The input sequence is left untouched.
	if in[0].BlockID() != "" {
		t.Fatal("EnsureIDs must not mutate its receiver")
	}
}

func TestValidateIDsRejectsDuplicates(t *testing.T) {
	l := BlockList{
		ParagraphBlock{blockBase: blockBase{ID: "x"}, Text: "one"},
		ParagraphBlock{blockBase: blockBase{ID: "x"}, Text: "two"},
	}
	if err := l.ValidateIDs(); err == nil {
		t.Fatal("duplicate ids must be rejected")
	}
}
