package mf2

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/raido/internal/apperr"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestHasProperty(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{"content":["lorem ipsum"]}}`)
	assert.True(t, HasProperty(doc, "content"))
	assert.False(t, HasProperty(doc, "name"))
}

func TestHasProperty_EmptyArrayDropped(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{"category":[],"content":["x"]}}`)
	assert.False(t, HasProperty(doc, "category"))
	_, present := doc.Properties["category"]
	assert.False(t, present)
}

func TestIsPropertyValidURL(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"https", `"https://example.com/"`, true},
		{"http with path", `"http://example.com/a/b?c=d"`, true},
		{"not a url", `"invalid url"`, false},
		{"relative", `"/posts/1"`, false},
		{"scheme only", `"mailto:someone@example.com"`, false},
		{"empty", `""`, false},
		{"malformed", `"http://[::1"`, false},
		{"object", `{"html":"<a>x</a>"}`, false},
		{"nested", `{"type":["h-cite"],"properties":{"url":["https://example.com/"]}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, `{"type":["h-entry"],"properties":{"in-reply-to":[`+tt.value+`],"content":["lorem ipsum"]}}`)
			assert.Equal(t, tt.want, IsPropertyValidURL(doc, "in-reply-to"))
		})
	}
}

func TestIsPropertyValidURL_Missing(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{"content":["lorem ipsum"]}}`)
	assert.False(t, IsPropertyValidURL(doc, "in-reply-to"))
	assert.False(t, IsPropertyValidURL(nil, "in-reply-to"))
}

func TestContentAndType_Plaintext(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{"in-reply-to":["invalid url"],"content":["lorem ipsum"]}}`)
	c, err := ContentAndType(doc, "content")
	require.NoError(t, err)
	assert.Equal(t, Content{Kind: KindPlaintext, Value: "lorem ipsum"}, c)
}

func TestContentAndType_HTML(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{"in-reply-to":["invalid url"],"content":[{"html":"lorem ipsum html"}]}}`)
	c, err := ContentAndType(doc, "content")
	require.NoError(t, err)
	assert.Equal(t, Content{Kind: KindHTML, Value: "lorem ipsum html"}, c)
}

func TestContentAndType_Absent(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{}}`)
	c, err := ContentAndType(doc, "content")
	require.NoError(t, err)
	assert.Equal(t, Content{Kind: KindPlaintext}, c)
}

func TestContentAndType_InvalidShapes(t *testing.T) {
	for name, value := range map[string]string{
		"number":       `42`,
		"bool":         `true`,
		"value object": `{"value":"no html here"}`,
		"nested":       `{"type":["h-card"],"properties":{"name":["Someone"]}}`,
	} {
		t.Run(name, func(t *testing.T) {
			doc := mustParse(t, `{"type":["h-entry"],"properties":{"content":[`+value+`]}}`)
			_, err := ContentAndType(doc, "content")
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "content", verr.Property)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
		})
	}
}

func TestPlainText(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{
		"a":["plain"],
		"b":[{"html":"<p>Hello <b>world</b></p><p>again</p>"}],
		"c":[{"html":"<p>ignored</p>","value":"preferred"}]
	}}`)

	a, err := PlainText(doc, "a")
	require.NoError(t, err)
	assert.Equal(t, "plain", a)

	b, err := PlainText(doc, "b")
	require.NoError(t, err)
	assert.Equal(t, " Hello world  again ", b)

	c, err := PlainText(doc, "c")
	require.NoError(t, err)
	assert.Equal(t, "preferred", c)
}

func TestParse_NonArrayProperty(t *testing.T) {
	_, err := Parse([]byte(`{"type":["h-entry"],"properties":{"content":"not an array"}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestParse_CommandsSeparated(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{"content":["hi"],"mp-slug":["my-slug"]}}`)
	assert.False(t, HasProperty(doc, "mp-slug"))
	assert.Equal(t, "my-slug", doc.Command("mp-slug"))
}

func TestParse_ValueVariants(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{
		"content":["text"],
		"summary":[{"html":"<i>x</i>","value":"x"}],
		"in-reply-to":[{"type":["h-cite"],"properties":{"url":["https://example.com/"]}}],
		"photo":[{"value":"https://example.com/a.jpg","alt":"A photo"}]
	}}`)

	v, _ := First(doc, "content")
	assert.Equal(t, Text("text"), v)

	v, _ = First(doc, "summary")
	assert.Equal(t, HTML{HTML: "<i>x</i>", Value: "x"}, v)

	v, _ = First(doc, "in-reply-to")
	cite, ok := v.(Embedded)
	require.True(t, ok)
	assert.Equal(t, "h-cite", PrimaryType(cite.Document))
	assert.True(t, IsPropertyValidURL(cite.Document, "url"))

	v, _ = First(doc, "photo")
	photo, ok := v.(Opaque)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"value": "https://example.com/a.jpg", "alt": "A photo"}, photo.Raw)
}

func TestMarshalJSON_RoundTrip(t *testing.T) {
	src := `{"type":["h-entry"],"properties":{"content":[{"html":"<b>x</b>"}],"category":["a","b"],"mp-slug":["s"]}}`
	doc := mustParse(t, src)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	again := mustParse(t, string(data))
	assert.Equal(t, doc, again)
}

func TestFromForm(t *testing.T) {
	form := url.Values{
		"h":            {"entry"},
		"content":      {"Hello from a form"},
		"category[]":   {"indieweb", "micropub"},
		"mp-slug":      {"hello"},
		"access_token": {"secret"},
		"photo":        {""},
	}
	doc := FromForm(form)

	assert.Equal(t, []string{"h-entry"}, doc.Types)
	assert.Equal(t, []string{"indieweb", "micropub"}, Strings(doc, "category"))
	assert.Equal(t, "hello", doc.Command("mp-slug"))
	assert.False(t, HasProperty(doc, "access_token"))
	assert.False(t, HasProperty(doc, "h"))
	assert.False(t, HasProperty(doc, "photo"))

	c, err := ContentAndType(doc, "content")
	require.NoError(t, err)
	assert.Equal(t, Content{Kind: KindPlaintext, Value: "Hello from a form"}, c)
}

func TestFromForm_DefaultsToEntry(t *testing.T) {
	doc := FromForm(url.Values{"content": {"x"}, "action": {"delete"}, "url": {"https://example.com/1"}})
	assert.Equal(t, DefaultType, PrimaryType(doc))
	assert.Equal(t, "delete", doc.Action)
	assert.Equal(t, "https://example.com/1", doc.URL)
	assert.False(t, HasProperty(doc, "url"))
}

func TestPrimaryType(t *testing.T) {
	assert.Equal(t, DefaultType, PrimaryType(&Document{}))
	assert.Equal(t, "h-event", PrimaryType(&Document{Types: []string{"h-event", "h-entry"}}))
}

func TestValidURLs(t *testing.T) {
	doc := mustParse(t, `{"type":["h-entry"],"properties":{"syndication":["https://a.example/1","nope",{"html":"x"},"https://b.example/2"]}}`)
	assert.Equal(t, []string{"https://a.example/1", "https://b.example/2"}, ValidURLs(doc, "syndication"))
}
