package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catPage = `<html><body>
<table class="infobox"><tbody>
<tr><th colspan="2">Cat</th></tr>
<tr><th>Kingdom:</th><td>Animalia<sup class="reference">[1]</sup></td></tr>
<tr><th>Population</th><td>600 million(est.)</td></tr>
<tr><th>Latitude</th><td>5</td></tr>
<tr><th>Notes</th><td>a very long value that certainly exceeds the forty-five character limit</td></tr>
<tr><th>Same</th><td>Same</td></tr>
<tr><th>Coordinates</th><td><span>51°30′26″N 0°7′39″W</span> / <span>51.50722°N 0.12750°W</span><span style="display:none"> / 51.50722; -0.12750</span></td></tr>
</tbody></table>
<p>The cat is a small mammal.</p>
<div class="mw-heading mw-heading2"><h2 id="See_also">See also</h2></div>
<ul>
<li><a href="/wiki/Dog" title="Dog">Dog</a></li>
<li><a href="/wiki/Cat_food" title="Cat food">Cat food</a> - food for cats</li>
</ul>
</body></html>`

func wikiMux(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			assert.Equal(t, "cats", q.Get("srsearch"))
			assert.Equal(t, "2", q.Get("srlimit"))
			_, _ = w.Write([]byte(`{"query":{"search":[{"title":"Cat","pageid":1},{"title":"Felidae","pageid":2}]}}`))
		case q.Get("titles") != "":
			assert.Equal(t, "Cat|Felidae", q.Get("titles"))
			assert.Equal(t, "700", q.Get("pithumbsize"))
			_, _ = w.Write([]byte(`{"query":{"pages":[
				{"pageid":2,"title":"Felidae","extract":"Felidae is a family.","fullurl":"https://en.wikipedia.org/wiki/Felidae"},
				{"pageid":1,"title":"Cat","extract":"The cat is a small\nmammal.\n\n== History ==\nLong ago.",
				 "fullurl":"https://en.wikipedia.org/wiki/Cat","thumbnail":{"source":"https://upload/cat.jpg"}}
			]}}`))
		default:
			t.Errorf("unexpected api query %s", r.URL.RawQuery)
		}
	})
	mux.HandleFunc("/wiki/Cat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(catPage))
	})
	mux.HandleFunc("/wiki/Felidae", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return mux
}

func TestFetchBuildsWidgetsInSearchOrder(t *testing.T) {
	srv := httptest.NewServer(wikiMux(t))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL})
	assert.Equal(t, types.Universal(types.SubkindEncyclopedia), p.Source())

	items, err := p.Fetch(context.Background(), types.Query{Text: "cats"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	cat := items[0].Widget
	require.NotNil(t, cat)
	assert.Equal(t, "Cat", cat.Title)
	assert.Equal(t, types.SubkindEncyclopedia, cat.Subkind)
	assert.Equal(t, "The cat is a small mammal.", cat.Payload["snippet"])
	assert.Equal(t, "https://upload/cat.jpg", cat.Payload["thumbnail"])
	assert.Equal(t, "https://en.wikipedia.org/wiki/Cat", cat.Payload["url"])

	infobox, ok := cat.Payload["infobox"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Animalia", infobox["Kingdom:"])
	assert.Equal(t, []string{"Dog", "Cat food"}, cat.Payload["see_also"])

	// Page load failed: the widget stays, without enrichment
	felidae := items[1].Widget
	require.NotNil(t, felidae)
	assert.Equal(t, "Felidae", felidae.Title)
	assert.NotContains(t, felidae.Payload, "infobox")
	assert.NotContains(t, felidae.Payload, "see_also")
	assert.NotContains(t, felidae.Payload, "thumbnail")
}

func TestFetchNoMatches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	items, err := NewProvider(Config{BaseURL: srv.URL}).Fetch(context.Background(), types.Query{Text: "qwxz"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchSearchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := NewProvider(Config{BaseURL: srv.URL}).Fetch(context.Background(), types.Query{Text: "cats"})
	var upstream *httpclient.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)
}

func TestInfoboxFilters(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(catPage))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Kingdom:":    "Animalia",
		"Population":  "600 million (est.)",
		"Coordinates": "51.50722°N -0.12750°W",
	}, Infobox(doc))
}

func TestInfoboxMissing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p>no box</p>`))
	require.NoError(t, err)
	assert.Nil(t, Infobox(doc))
}

func TestCoordinates(t *testing.T) {
	assert.Equal(t, "-33.8688°S 151.2093°E", Coordinates("33°52′S 151°12′E / 33.8688°S 151.2093°E"))
	assert.Equal(t, "48.8567°N 2.3508°E", Coordinates("48.8567°N 2.3508°E"))
}

func TestSeeAlsoLegacyHeading(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<html><body>
<h2><span class="mw-headline" id="See_also">See also</span></h2>
<div class="div-col"><ul><li><a href="/wiki/Lion" title="Lion">Lion</a></li><li><a href="/wiki/Tiger">Tiger</a></li></ul></div>
<h2><span class="mw-headline" id="References">References</span></h2>
<ul><li><a title="Ref">Ref</a></li></ul>
</body></html>`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Lion", "Tiger"}, SeeAlso(doc))
}

func TestSeeAlsoAbsent(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<html><body><p>x</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, SeeAlso(doc))
}
