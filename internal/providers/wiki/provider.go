package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/huggypanda/backend/internal/shared/htmlutil"
	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
	"golang.org/x/sync/errgroup"
)

// DefaultLimit is how many entries are turned into widgets per query
const DefaultLimit = 2

// Config describes the MediaWiki site
type Config struct {
	BaseURL   string
	Limit     int
	Email     string
	RateLimit float64
	Timeout   time.Duration
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title  string `json:"title"`
			PageID int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

type page struct {
	PageID    int    `json:"pageid"`
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	FullURL   string `json:"fullurl"`
	Missing   bool   `json:"missing"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

type pagesResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
}

// Provider builds encyclopedia widgets from a MediaWiki site: the lead
// extract and thumbnail, the infobox and the "See also" list.
type Provider struct {
	client *httpclient.Client
	base   string
	limit  int
}

// NewProvider creates a wiki provider
func NewProvider(cfg Config) *Provider {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
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
		}),
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		limit: cfg.Limit,
	}
}

// Source identifies the provider
func (p *Provider) Source() types.Source {
	return types.Universal(types.SubkindEncyclopedia)
}

// Fetch returns one widget per matching entry, best match first
func (p *Provider) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	titles, err := p.search(ctx, q.Text)
	if err != nil || len(titles) == 0 {
		return nil, err
	}

	pages, err := p.pages(ctx, titles)
	if err != nil {
		return nil, err
	}

	// Page HTML is optional enrichment; failures leave the widget plain
	enrich := make([]pageExtras, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, pg := range pages {
		i, pg := i, pg
		g.Go(func() error {
			enrich[i] = p.extras(gctx, pg.Title)
			return nil
		})
	}
	_ = g.Wait()

	items := make([]types.Item, 0, len(pages))
	for i, pg := range pages {
		payload := map[string]interface{}{
			"snippet": snippet(pg.Extract),
			"url":     pg.FullURL,
		}
		if pg.FullURL == "" {
			payload["url"] = p.articleURL(pg.Title)
		}
		if pg.Thumbnail != nil && pg.Thumbnail.Source != "" {
			payload["thumbnail"] = pg.Thumbnail.Source
		}
		if len(enrich[i].infobox) > 0 {
			payload["infobox"] = enrich[i].infobox
		}
		if len(enrich[i].seeAlso) > 0 {
			payload["see_also"] = enrich[i].seeAlso
		}

		items = append(items, types.NewWidget(types.Widget{
			Subkind: types.SubkindEncyclopedia,
			Title:   pg.Title,
			Payload: payload,
		}))
	}
	return items, nil
}

func (p *Provider) search(ctx context.Context, text string) ([]string, error) {
	var out searchResponse
	err := p.client.GetJSON(ctx, "/w/api.php", map[string]string{
		"action":   "query",
		"list":     "search",
		"srsearch": text,
		"srlimit":  strconv.Itoa(p.limit),
		"format":   "json",
	}, &out)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(out.Query.Search))
	for _, s := range out.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

// pages fetches extracts and thumbnails, preserving search order
func (p *Provider) pages(ctx context.Context, titles []string) ([]page, error) {
	var out pagesResponse
	err := p.client.GetJSON(ctx, "/w/api.php", map[string]string{
		"action":        "query",
		"prop":          "extracts|pageimages|info",
		"inprop":        "url",
		"exintro":       "1",
		"explaintext":   "1",
		"pithumbsize":   "700",
		"redirects":     "1",
		"titles":        strings.Join(titles, "|"),
		"format":        "json",
		"formatversion": "2",
	}, &out)
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string]page, len(out.Query.Pages))
	for _, pg := range out.Query.Pages {
		if !pg.Missing {
			byTitle[pg.Title] = pg
		}
	}

	ordered := make([]page, 0, len(titles))
	for _, t := range titles {
		if pg, ok := byTitle[t]; ok {
			ordered = append(ordered, pg)
			delete(byTitle, t)
		}
	}
	return ordered, nil
}

type pageExtras struct {
	infobox map[string]string
	seeAlso []string
}

func (p *Provider) extras(ctx context.Context, title string) pageExtras {
	body, err := p.client.Raw(ctx, "/wiki/"+articlePath(title), nil)
	if err != nil {
		return pageExtras{}
	}

	var extras pageExtras
	if doc, err := htmlutil.LoadDocument(body, "text/html; charset=utf-8"); err == nil {
		extras.infobox = Infobox(doc)
	}
	if node, err := htmlutil.LoadNode(body, "text/html; charset=utf-8"); err == nil {
		extras.seeAlso = SeeAlso(node)
	}
	return extras
}

func (p *Provider) articleURL(title string) string {
	return p.base + "/wiki/" + articlePath(title)
}

func articlePath(title string) string {
	return url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// snippet keeps the lead section as one paragraph
func snippet(extract string) string {
	lead, _, _ := strings.Cut(extract, "==")
	return htmlutil.NormalizeWhitespace(lead)
}
