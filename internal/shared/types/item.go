package types

import "time"

// ItemKind tags the variant held by an Item
type ItemKind string

const (
	ItemText   ItemKind = "text"
	ItemWidget ItemKind = "widget"
	ItemImage  ItemKind = "image"
	ItemNews   ItemKind = "news"
)

// Item is one displayable result. Exactly one variant pointer is set,
// matching Kind. ID is stable across re-renders of the same cycle.
type Item struct {
	ID     string     `json:"id"`
	Kind   ItemKind   `json:"kind"`
	Text   *TextItem  `json:"text,omitempty"`
	Widget *Widget    `json:"widget,omitempty"`
	Image  *ImageItem `json:"image,omitempty"`
	News   *NewsItem  `json:"news,omitempty"`
}

// TextItem is a plain text result (model answer or web hit)
type TextItem struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Link     string `json:"link,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	Favicon  string `json:"favicon,omitempty"`
	Age      string `json:"age,omitempty"`
}

// Widget is a structured card from a universal source
type Widget struct {
	Subkind string                 `json:"subkind"`
	Title   string                 `json:"title"`
	Payload map[string]interface{} `json:"payload"`
}

// ImageItem is one image search hit
type ImageItem struct {
	ThumbnailURL string `json:"thumbnail_url"`
	Link         string `json:"link"`
	Title        string `json:"title,omitempty"`
}

// NewsItem is one news story
type NewsItem struct {
	Headline  string    `json:"headline"`
	Link      string    `json:"link"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
	Snippet   string    `json:"snippet,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// NewText wraps a text item
func NewText(t TextItem) Item { return Item{Kind: ItemText, Text: &t} }

// NewWidget wraps a widget item
func NewWidget(w Widget) Item { return Item{Kind: ItemWidget, Widget: &w} }

// NewImage wraps an image item
func NewImage(i ImageItem) Item { return Item{Kind: ItemImage, Image: &i} }

// NewNews wraps a news item
func NewNews(n NewsItem) Item { return Item{Kind: ItemNews, News: &n} }
