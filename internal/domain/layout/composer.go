package layout

import (
	"github.com/huggypanda/backend/internal/shared/types"
)

// DefaultImagesPerRow is the image grid width
const DefaultImagesPerRow = 2

// Block keys for the fixed blocks
const (
	KeyShortcuts      = "shortcuts"
	KeyExampleQueries = "example_queries"
	KeyModelAnswer    = "model_answer"
	KeyWebResults     = "web_results"
	KeyImageGrid      = "image_grid"
	KeyNews           = "news"
)

// Options holds the static content and grid shape
type Options struct {
	Shortcuts      []types.Link
	ExampleQueries []types.Link
	ImagesPerRow   int
}

// Composer assigns settled results to panes. Pane assignment depends only
// on source kind; there is no height balancing between panes.
type Composer struct {
	shortcuts      []types.Link
	exampleQueries []types.Link
	perRow         int
}

// New creates a composer
func New(opts Options) *Composer {
	if opts.ImagesPerRow <= 0 {
		opts.ImagesPerRow = DefaultImagesPerRow
	}
	return &Composer{
		shortcuts:      append([]types.Link(nil), opts.Shortcuts...),
		exampleQueries: append([]types.Link(nil), opts.ExampleQueries...),
		perRow:         opts.ImagesPerRow,
	}
}

// Compose derives the layout for a settled bundle. It does not modify the
// bundle and returns equal layouts for equal inputs.
func (c *Composer) Compose(b types.Bundle, mode types.Mode) types.LayoutBundle {
	if mode == types.ModeHome {
		return c.home(b)
	}
	return c.search(b)
}

func (c *Composer) home(b types.Bundle) types.LayoutBundle {
	left := []types.Block{{
		Key:   KeyShortcuts,
		Kind:  types.BlockShortcuts,
		Links: copyLinks(c.shortcuts),
	}}
	if r, ok := b.First(types.KindNews); ok && r.HasItems() {
		left = append(left, itemsBlock(KeyNews, types.BlockNews, r))
	}

	return types.LayoutBundle{
		Mode:     types.ModeHome,
		Sequence: b.Sequence,
		Left:     types.Pane{Width: types.TwoThirds, Blocks: left},
		Right: types.Pane{
			Width:  types.OneThird,
			Static: true,
			Blocks: []types.Block{{
				Key:   KeyExampleQueries,
				Kind:  types.BlockExampleQueries,
				Links: copyLinks(c.exampleQueries),
			}},
		},
	}
}

func (c *Composer) search(b types.Bundle) types.LayoutBundle {
	var left, right []types.Block

	if r, ok := b.First(types.KindLocalModel); ok && r.HasItems() {
		left = append(left, itemsBlock(KeyModelAnswer, types.BlockModelAnswer, r))
	}
	if r, ok := b.First(types.KindWeb); ok && r.HasItems() {
		left = append(left, itemsBlock(KeyWebResults, types.BlockWebResults, r))
	}

	// One block per widget, sources in declared order
	for _, r := range b.OfKind(types.KindUniversal) {
		if !r.HasItems() {
			continue
		}
		for _, item := range r.Items {
			src := r.Source
			right = append(right, types.Block{
				Key:    item.ID,
				Kind:   types.BlockWidget,
				Source: &src,
				Items:  []types.Item{item},
			})
		}
	}

	if r, ok := b.First(types.KindImage); ok && r.HasItems() {
		src := r.Source
		right = append(right, types.Block{
			Key:    KeyImageGrid,
			Kind:   types.BlockImageGrid,
			Source: &src,
			Rows:   c.rows(r.Items),
		})
	}
	if r, ok := b.First(types.KindNews); ok && r.HasItems() {
		right = append(right, itemsBlock(KeyNews, types.BlockNews, r))
	}

	return types.LayoutBundle{
		Mode:     types.ModeSearch,
		Sequence: b.Sequence,
		Left:     types.Pane{Width: types.TwoThirds, Blocks: left},
		Right:    types.Pane{Width: types.OneThird, Blocks: right},
	}
}

// rows chunks images into fixed-width rows; the last row may be short
func (c *Composer) rows(items []types.Item) [][]types.Item {
	out := make([][]types.Item, 0, (len(items)+c.perRow-1)/c.perRow)
	for start := 0; start < len(items); start += c.perRow {
		end := start + c.perRow
		if end > len(items) {
			end = len(items)
		}
		out = append(out, append([]types.Item(nil), items[start:end]...))
	}
	return out
}

func itemsBlock(key string, kind types.BlockKind, r types.ProviderResult) types.Block {
	src := r.Source
	blk := types.Block{
		Key:    key,
		Kind:   kind,
		Source: &src,
		Items:  append([]types.Item(nil), r.Items...),
	}
	if len(r.Meta) > 0 {
		blk.Meta = make(map[string]string, len(r.Meta))
		for k, v := range r.Meta {
			blk.Meta[k] = v
		}
	}
	return blk
}

func copyLinks(links []types.Link) []types.Link {
	return append([]types.Link(nil), links...)
}
