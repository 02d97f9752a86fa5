package htmlutil

import (
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<strong>Cats</strong> are  small", "Cats are small"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<script>alert(1)</script>plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripTags(tt.in), tt.in)
	}
}

func TestLoadDocument(t *testing.T) {
	page := []byte(`<html><body><table class="infobox"><tr><th>Order</th><td>Carnivora</td></tr></table></body></html>`)

	doc, err := LoadDocument(page, "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "Carnivora", doc.Find("table.infobox td").Text())
}

func TestLoadDocumentDetectsCharset(t *testing.T) {
	// "café" in ISO-8859-1
	page := []byte("<html><body><p>Le caf\xe9 est une boisson tr\xe8s populaire. " +
		"On boit le caf\xe9 le matin, apr\xe8s le d\xe9jeuner et parfois le soir. " +
		"La cr\xe8me br\xfbl\xe9e et le caf\xe9 cr\xe8me sont des sp\xe9cialit\xe9s fran\xe7aises.</p></body></html>")

	doc, err := LoadDocument(page, "")
	require.NoError(t, err)
	assert.Contains(t, doc.Find("p").Text(), "café")
}

func TestLoadNode(t *testing.T) {
	page := []byte(`<html><body><h2 id="See_also">See also</h2><ul><li><a>Lion</a></li></ul></body></html>`)

	node, err := LoadNode(page, "")
	require.NoError(t, err)
	li := htmlquery.FindOne(node, "//ul/li")
	require.NotNil(t, li)
	assert.Equal(t, "Lion", htmlquery.InnerText(li))
}

func TestLoadRejectsEmpty(t *testing.T) {
	_, err := LoadDocument(nil, "")
	assert.Error(t, err)
}
