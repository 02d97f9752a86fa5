package tmdb

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
)

// ImageBase prefixes poster, backdrop and profile paths
const ImageBase = "https://image.tmdb.org/t/p/original"

// Config describes the TMDB API
type Config struct {
	BaseURL   string
	Token     string // v4 read access token
	Email     string
	RateLimit float64
	Timeout   time.Duration
}

type knownFor struct {
	Title         string `json:"title"`
	Name          string `json:"name"`
	OriginalTitle string `json:"original_title"`
	PosterPath    string `json:"poster_path"`
	ReleaseDate   string `json:"release_date"`
	FirstAirDate  string `json:"first_air_date"`
	MediaType     string `json:"media_type"`
}

type result struct {
	ID               int        `json:"id"`
	MediaType        string     `json:"media_type"`
	Adult            bool       `json:"adult"`
	Title            string     `json:"title"`
	Name             string     `json:"name"`
	OriginalTitle    string     `json:"original_title"`
	OriginalName     string     `json:"original_name"`
	OriginalLanguage string     `json:"original_language"`
	Overview         string     `json:"overview"`
	PosterPath       string     `json:"poster_path"`
	BackdropPath     string     `json:"backdrop_path"`
	ProfilePath      string     `json:"profile_path"`
	ReleaseDate      string     `json:"release_date"`
	FirstAirDate     string     `json:"first_air_date"`
	VoteAverage      float64    `json:"vote_average"`
	VoteCount        int        `json:"vote_count"`
	KnownFor         []knownFor `json:"known_for"`
}

type searchResponse struct {
	Results []result `json:"results"`
}

type details struct {
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Homepage string `json:"homepage"`
	Status   string `json:"status"`
	Tagline  string `json:"tagline"`
	Runtime  int    `json:"runtime"`
	Seasons  int    `json:"number_of_seasons"`
	Episodes int    `json:"number_of_episodes"`
}

// Provider turns the best TMDB multi-search hit into a media card
type Provider struct {
	client *httpclient.Client
}

// NewProvider creates a TMDB provider
func NewProvider(cfg Config) *Provider {
	ua := "HuggyPanda/0.1.0 (https://huggypanda.com)"
	if cfg.Email != "" {
		ua = fmt.Sprintf("HuggyPanda/0.1.0 (https://huggypanda.com; %s)", cfg.Email)
	}
	return &Provider{
		client: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			UserAgent: ua,
			Headers: map[string]string{
				"Authorization":   "Bearer " + cfg.Token,
				"Accept-Language": "en-US",
			},
		}),
	}
}

// Source identifies the provider
func (p *Provider) Source() types.Source {
	return types.Universal(types.SubkindMedia)
}

// Fetch returns at most one media widget
func (p *Provider) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	title := CleanTitle(q.Text)
	if title == "" {
		return nil, nil
	}

	var out searchResponse
	err := p.client.GetJSON(ctx, "/search/multi", map[string]string{
		"query":         title,
		"include_adult": "false",
		"page":          "1",
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, nil
	}

	hit := out.Results[0]
	var payload map[string]interface{}
	switch hit.MediaType {
	case "movie", "tv":
		payload = titlePayload(hit)
		// Details are optional; the card stands without them
		if d, err := p.details(ctx, hit.MediaType, hit.ID); err == nil {
			mergeDetails(payload, d)
		}
	case "person":
		payload = personPayload(hit)
	default:
		return nil, nil
	}

	return []types.Item{types.NewWidget(types.Widget{
		Subkind: types.SubkindMedia,
		Title:   first(hit.Title, hit.Name),
		Payload: payload,
	})}, nil
}

func (p *Provider) details(ctx context.Context, mediaType string, id int) (details, error) {
	var d details
	err := p.client.GetJSON(ctx, fmt.Sprintf("/%s/%d", mediaType, id), nil, &d)
	return d, err
}

// CleanTitle drops a trailing parenthetical such as "(film)" or "(2019)"
func CleanTitle(text string) string {
	head, _, _ := strings.Cut(text, "(")
	return strings.TrimSpace(head)
}

func titlePayload(r result) map[string]interface{} {
	return map[string]interface{}{
		"content_type":   r.MediaType,
		"is_adult":       r.Adult,
		"title":          first(r.Title, r.Name),
		"original_title": first(r.OriginalTitle, r.OriginalName),
		"description":    r.Overview,
		"poster_url":     imageURL(r.PosterPath),
		"backdrop_url":   imageURL(r.BackdropPath),
		"language":       r.OriginalLanguage,
		"release_date":   first(r.ReleaseDate, r.FirstAirDate),
		"rating":         math.Round(r.VoteAverage*10) / 10,
		"votes":          r.VoteCount,
	}
}

func personPayload(r result) map[string]interface{} {
	known := make([]map[string]string, 0, len(r.KnownFor))
	for _, k := range r.KnownFor {
		known = append(known, map[string]string{
			"title":          first(k.Title, k.Name),
			"original_title": k.OriginalTitle,
			"poster_url":     imageURL(k.PosterPath),
			"release_date":   first(k.ReleaseDate, k.FirstAirDate),
		})
	}
	return map[string]interface{}{
		"content_type":  "person",
		"is_adult":      r.Adult,
		"name":          r.Name,
		"original_name": r.OriginalName,
		"profile_url":   imageURL(r.ProfilePath),
		"known_for":     known,
	}
}

func mergeDetails(payload map[string]interface{}, d details) {
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	if len(genres) > 0 {
		payload["genres"] = genres
	}
	if d.Homepage != "" {
		payload["homepage"] = d.Homepage
	}
	if d.Status != "" {
		payload["status"] = d.Status
	}
	if d.Tagline != "" {
		payload["tagline"] = d.Tagline
	}
	if d.Runtime > 0 {
		payload["runtime"] = fmt.Sprintf("%d min.", d.Runtime)
	}
	if d.Seasons > 0 {
		payload["seasons"] = d.Seasons
		payload["episodes"] = d.Episodes
	}
}

func imageURL(path string) string {
	if path == "" {
		return ""
	}
	return ImageBase + path
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
