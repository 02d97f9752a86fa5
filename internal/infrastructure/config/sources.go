package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/huggypanda/backend/internal/shared/types"
)

// Shortcut is a home page link that jumps straight into a search vertical
type Shortcut struct {
	Label string `yaml:"label" toml:"label" json:"label"`
	Mode  string `yaml:"mode" toml:"mode" json:"mode"`
	Href  string `yaml:"href" toml:"href" json:"href"`
}

// Sources declares the universal widget order and the static home blocks.
// Universal entries are subkinds; their order is the order widgets appear
// in the right pane.
type Sources struct {
	Universal      []string   `yaml:"universal" toml:"universal"`
	Shortcuts      []Shortcut `yaml:"shortcuts" toml:"shortcuts"`
	ExampleQueries []string   `yaml:"example_queries" toml:"example_queries"`
}

// DefaultSources returns the built-in sources declaration.
func DefaultSources() *Sources {
	return &Sources{
		Universal: []string{"encyclopedia", "music", "media", "travel"},
		Shortcuts: []Shortcut{
			{Label: "Web", Mode: "search", Href: "/search?type=web"},
			{Label: "Images", Mode: "search", Href: "/search?type=images"},
			{Label: "Videos", Mode: "search", Href: "/search?type=videos"},
			{Label: "News", Mode: "search", Href: "/search?type=news"},
		},
		ExampleQueries: []string{
			"How far is the moon?",
			"Best pasta recipes",
			"Who wrote Dune?",
			"Weather in Tokyo",
			"Latest Mars rover news",
		},
	}
}

// LoadSources reads a YAML or TOML sources file. An empty path returns
// the defaults. Sections missing from the file keep their defaults.
func LoadSources(path string) (*Sources, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	return ParseSources(data, filepath.Ext(path))
}

// ParseSources decodes sources data; ext selects the format (".yaml", ".yml", ".toml").
func ParseSources(data []byte, ext string) (*Sources, error) {
	var parsed Sources
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse YAML sources: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse TOML sources: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported sources format %q", ext)
	}

	defaults := DefaultSources()
	if parsed.Universal == nil {
		parsed.Universal = defaults.Universal
	}
	if parsed.Shortcuts == nil {
		parsed.Shortcuts = defaults.Shortcuts
	}
	if parsed.ExampleQueries == nil {
		parsed.ExampleQueries = defaults.ExampleQueries
	}

	if err := parsed.validate(); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (s *Sources) validate() error {
	seen := make(map[string]bool, len(s.Universal))
	for _, sub := range s.Universal {
		if sub == "" {
			return fmt.Errorf("universal subkind cannot be empty")
		}
		if seen[sub] {
			return fmt.Errorf("universal subkind %q declared twice", sub)
		}
		seen[sub] = true
	}
	return nil
}

// ShortcutLinks converts the shortcuts block into layout links
func (s *Sources) ShortcutLinks() []types.Link {
	links := make([]types.Link, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		links = append(links, types.Link{Label: sc.Label, Href: sc.Href, Mode: sc.Mode})
	}
	return links
}

// ExampleLinks turns each example query into a search link
func (s *Sources) ExampleLinks() []types.Link {
	links := make([]types.Link, 0, len(s.ExampleQueries))
	for _, q := range s.ExampleQueries {
		links = append(links, types.Link{
			Label: q,
			Href:  "/search?q=" + url.QueryEscape(q),
			Mode:  string(types.ModeSearch),
		})
	}
	return links
}
