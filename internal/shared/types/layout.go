package types

// BlockKind identifies what a block renders
type BlockKind string

const (
	BlockShortcuts      BlockKind = "shortcuts"
	BlockNews           BlockKind = "news"
	BlockExampleQueries BlockKind = "example_queries"
	BlockModelAnswer    BlockKind = "model_answer"
	BlockWebResults     BlockKind = "web_results"
	BlockWidget         BlockKind = "widget"
	BlockImageGrid      BlockKind = "image_grid"
)

// Fraction is a pane width expressed as a ratio of the viewport
type Fraction struct {
	Num int `json:"num"`
	Den int `json:"den"`
}

var (
	TwoThirds = Fraction{Num: 2, Den: 3}
	OneThird  = Fraction{Num: 1, Den: 3}
	OneHalf   = Fraction{Num: 1, Den: 2}
)

// Link is a labelled target used by static blocks
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

// Block is one layout unit contributed by a single source
type Block struct {
	Key    string            `json:"key"`
	Kind   BlockKind         `json:"kind"`
	Source *Source           `json:"source,omitempty"`
	Items  []Item            `json:"items,omitempty"`
	Rows   [][]Item          `json:"rows,omitempty"`
	Links  []Link            `json:"links,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// Pane is one of the two display regions
type Pane struct {
	Width  Fraction `json:"width"`
	Static bool     `json:"static"`
	Blocks []Block  `json:"blocks"`
}

// LayoutBundle is the derived, pane-assigned layout for one cycle
type LayoutBundle struct {
	Mode     Mode   `json:"mode"`
	Sequence uint64 `json:"sequence"`
	Left     Pane   `json:"left"`
	Right    Pane   `json:"right"`
}

// Keys lists block keys of a pane in order
func (p Pane) Keys() []string {
	keys := make([]string, len(p.Blocks))
	for i, b := range p.Blocks {
		keys[i] = b.Key
	}
	return keys
}
