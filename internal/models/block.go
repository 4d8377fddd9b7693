package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BlockType tags one variant of the content-block union.
type BlockType string

const (
	BlockKindHeading   BlockType = "heading"
	BlockKindParagraph BlockType = "paragraph"
	BlockKindList      BlockType = "list"
	BlockKindImage     BlockType = "image"
	BlockKindTable     BlockType = "table"
	BlockKindChecklist BlockType = "checklist"
	BlockKindCallout   BlockType = "callout"
	BlockKindQuote     BlockType = "quote"
	BlockKindStats     BlockType = "stats"
	BlockKindDivider   BlockType = "divider"
)

// Block is one typed unit of rich content within a post's block sequence.
// The union is closed: every variant is listed here and handled exhaustively
// by the markdown converter and by decodeBlock below.
type Block interface {
	Kind() BlockType
	// BlockID returns the id unique within the owning post's sequence.
	BlockID() string
}

// blockBase carries the fields every variant shares.
type blockBase struct {
	ID string `json:"id"`
}

func (b blockBase) BlockID() string { return b.ID }

type HeadingBlock struct {
	blockBase
	Level int    `json:"level"`
	Text  string `json:"text"`
}

func (HeadingBlock) Kind() BlockType { return BlockKindHeading }

type ParagraphBlock struct {
	blockBase
	Text string `json:"text"`
}

func (ParagraphBlock) Kind() BlockType { return BlockKindParagraph }

type ListBlock struct {
	blockBase
	Ordered bool     `json:"ordered"`
	Items   []string `json:"items"`
}

func (ListBlock) Kind() BlockType { return BlockKindList }

type ImageBlock struct {
	blockBase
	Src     string `json:"src"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

func (ImageBlock) Kind() BlockType { return BlockKindImage }

type TableBlock struct {
	blockBase
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func (TableBlock) Kind() BlockType { return BlockKindTable }

type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type ChecklistBlock struct {
	blockBase
	Items []ChecklistItem `json:"items"`
}

func (ChecklistBlock) Kind() BlockType { return BlockKindChecklist }

type CalloutBlock struct {
	blockBase
	Variant string `json:"variant,omitempty"` // info | warning | tip
	Text    string `json:"text"`
}

func (CalloutBlock) Kind() BlockType { return BlockKindCallout }

type QuoteBlock struct {
	blockBase
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

func (QuoteBlock) Kind() BlockType { return BlockKindQuote }

type StatItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type StatsBlock struct {
	blockBase
	Items []StatItem `json:"items"`
}

func (StatsBlock) Kind() BlockType { return BlockKindStats }

type DividerBlock struct {
	blockBase
}

func (DividerBlock) Kind() BlockType { return BlockKindDivider }

// BlockList is an ordered block sequence stored as a JSON column.
type BlockList []Block

// taggedBlock is the wire form: variant fields flattened next to "type".
func marshalBlock(b Block) ([]byte, error) {
	inner, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(inner, &fields); err != nil {
		return nil, err
	}
	fields["type"], _ = json.Marshal(b.Kind())
	return json.Marshal(fields)
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var probe struct {
		Type BlockType `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	var (
		b   Block
		err error
	)
	switch probe.Type {
	case BlockKindHeading:
		v := HeadingBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindParagraph:
		v := ParagraphBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindList:
		v := ListBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindImage:
		v := ImageBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindTable:
		v := TableBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindChecklist:
		v := ChecklistBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindCallout:
		v := CalloutBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindQuote:
		v := QuoteBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindStats:
		v := StatsBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	case BlockKindDivider:
		v := DividerBlock{}
		err = json.Unmarshal(raw, &v)
		b = v
	default:
		return nil, fmt.Errorf("models.Block: unknown block type %q", probe.Type)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (l BlockList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for _, b := range l {
		raw, err := marshalBlock(b)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func (l *BlockList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	blocks := make(BlockList, 0, len(raws))
	for _, raw := range raws {
		b, err := decodeBlock(raw)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}
	*l = blocks
	return nil
}

func (l BlockList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *BlockList) Scan(value interface{}) error {
	if l == nil {
		return fmt.Errorf("models.BlockList: Scan on nil pointer")
	}
	if value == nil {
		*l = BlockList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models.BlockList: unsupported Scan type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*l = BlockList{}
		return nil
	}
	return l.UnmarshalJSON(raw)
}

// EnsureIDs returns the sequence with every id-less block assigned the next
// free "b<n>" id. Explicitly supplied ids are kept untouched, so editor
// payloads may mix their own ids with generated ones.
func (l BlockList) EnsureIDs() BlockList {
	used := make(map[string]struct{}, len(l))
	for _, b := range l {
		if id := b.BlockID(); id != "" {
			used[id] = struct{}{}
		}
	}

	next := 1
	out := make(BlockList, len(l))
	for i, b := range l {
		if b.BlockID() != "" {
			out[i] = b
			continue
		}
		var id string
		for {
			id = fmt.Sprintf("b%d", next)
			next++
			if _, taken := used[id]; !taken {
				break
			}
		}
		used[id] = struct{}{}
		out[i] = withBlockID(b, id)
	}
	return out
}

// withBlockID rebuilds the variant with the given id. Blocks are stored as
// values, so the embedded id cannot be set through the interface.
func withBlockID(b Block, id string) Block {
	switch v := b.(type) {
	case HeadingBlock:
		v.ID = id
		return v
	case ParagraphBlock:
		v.ID = id
		return v
	case ListBlock:
		v.ID = id
		return v
	case ImageBlock:
		v.ID = id
		return v
	case TableBlock:
		v.ID = id
		return v
	case ChecklistBlock:
		v.ID = id
		return v
	case CalloutBlock:
		v.ID = id
		return v
	case QuoteBlock:
		v.ID = id
		return v
	case StatsBlock:
		v.ID = id
		return v
	case DividerBlock:
		v.ID = id
		return v
	}
	return b
}

// ValidateIDs reports an error when two blocks in the sequence share an id.
func (l BlockList) ValidateIDs() error {
	seen := make(map[string]struct{}, len(l))
	for i, b := range l {
		id := b.BlockID()
		if id == "" {
			return fmt.Errorf("block %d has empty id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate block id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
