package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huggypanda/backend/internal/shared/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.Server.Gzip)

	// Session config
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "session_id", cfg.Session.CookieName)
	assert.Equal(t, time.Duration(0), cfg.Session.Staleness)
	assert.True(t, cfg.Session.Required)

	// Provider timeouts: local model gets the longest budget
	assert.Equal(t, 20*time.Second, cfg.Providers.LocalModelTimeout)
	assert.Equal(t, 8*time.Second, cfg.Providers.NewsTimeout)

	// Layout policy
	assert.Equal(t, 14, cfg.Layout.ImageCap)
	assert.Equal(t, 2, cfg.Layout.ImagesPerRow)

	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Layout.ImageCap)
	assert.Equal(t, "gemma3:4b", cfg.Providers.LocalModelName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"LOG_LEVEL":           "debug",
		"SESSION_BACKEND":     "remote",
		"SESSION_STALENESS":   "30s",
		"SESSION_REQUIRED":    "false",
		"LOCAL_MODEL_TIMEOUT": "3s",
		"NEWS_TIMEOUT":        "750ms",
		"IMAGE_CAP":           "10",
		"IMAGES_PER_ROW":      "3",
		"CORS_ORIGINS":        "http://localhost:3000,https://huggypanda.com",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "remote", cfg.Session.Backend)
	assert.Equal(t, 30*time.Second, cfg.Session.Staleness)
	assert.False(t, cfg.Session.Required)
	assert.Equal(t, 3*time.Second, cfg.Providers.LocalModelTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.Providers.NewsTimeout)
	assert.Equal(t, 10, cfg.Layout.ImageCap)
	assert.Equal(t, 3, cfg.Layout.ImagesPerRow)
	assert.Equal(t, []string{"http://localhost:3000", "https://huggypanda.com"}, cfg.Server.CORSOrigins)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown backend", key: "SESSION_BACKEND", value: "memcached"},
		{name: "zero images per row", key: "IMAGES_PER_ROW", value: "0"},
		{name: "negative cap", key: "IMAGE_CAP", value: "-1"},
		{name: "bad duration", key: "NEWS_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back rather than failing
			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestParseSources(t *testing.T) {
	yamlData := []byte(`
universal:
  - music
  - encyclopedia
example_queries:
  - "cats"
`)
	tomlData := []byte(`
universal = ["media", "encyclopedia"]

[[shortcuts]]
label = "Web"
mode = "search"
href = "/search?type=web"
`)

	t.Run("yaml", func(t *testing.T) {
		s, err := ParseSources(yamlData, ".yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{"music", "encyclopedia"}, s.Universal)
		assert.Equal(t, []string{"cats"}, s.ExampleQueries)
		assert.Equal(t, DefaultSources().Shortcuts, s.Shortcuts)
	})

	t.Run("toml", func(t *testing.T) {
		s, err := ParseSources(tomlData, ".toml")
		require.NoError(t, err)
		assert.Equal(t, []string{"media", "encyclopedia"}, s.Universal)
		require.Len(t, s.Shortcuts, 1)
		assert.Equal(t, "Web", s.Shortcuts[0].Label)
		assert.Equal(t, DefaultSources().ExampleQueries, s.ExampleQueries)
	})

	t.Run("duplicate subkind", func(t *testing.T) {
		_, err := ParseSources([]byte("universal: [music, music]"), ".yml")
		assert.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := ParseSources([]byte("{}"), ".json")
		assert.Error(t, err)
	})
}

func TestLoadSourcesFile(t *testing.T) {
	s, err := LoadSources("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSources(), s)

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("universal: [encyclopedia]\n"), 0o600))

	s, err = LoadSources(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"encyclopedia"}, s.Universal)

	_, err = LoadSources(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSourceLinks(t *testing.T) {
	s := &Sources{
		Shortcuts:      []Shortcut{{Label: "News", Mode: "search", Href: "/search?type=news"}},
		ExampleQueries: []string{"Who wrote Dune?"},
	}

	assert.Equal(t, []types.Link{{Label: "News", Mode: "search", Href: "/search?type=news"}}, s.ShortcutLinks())
	assert.Equal(t, []types.Link{{
		Label: "Who wrote Dune?",
		Href:  "/search?q=Who+wrote+Dune%3F",
		Mode:  "search",
	}}, s.ExampleLinks())
}
