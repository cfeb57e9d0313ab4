package micropub

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/raido/internal/render"
	"github.com/starford/raido/internal/testutil"
)

var renderNoWrap = render.Options{}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"mp-slug wins", `{"properties":{"mp-slug":["My Custom Slug"],"name":["Title"]}}`, "my-custom-slug"},
		{"from name", `{"properties":{"name":["Hello, World!"],"content":["body"]}}`, "hello-world"},
		{"from content", `{"properties":{"content":["One two three four five six seven eight"]}}`, "one-two-three-four-five-six"},
		{"from html content", `{"properties":{"content":[{"html":"<p>Rich <b>text</b></p>"}]}}`, "rich-text"},
		{"punctuation only name falls through", `{"properties":{"name":["!!!"],"content":["fallback"]}}`, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(testutil.Doc(t, tt.doc)))
		})
	}
}

func TestSlug_UUIDFallback(t *testing.T) {
	s := Slug(testutil.Doc(t, `{"properties":{"like-of":["https://example.com/"]}}`))
	_, err := uuid.Parse(s)
	require.NoError(t, err, "slug %q", s)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "caf-au-lait", slugify("Café au lait"))
	assert.Equal(t, "", slugify("  --  "))
	assert.LessOrEqual(t, len(slugify("a very long title that keeps going and going and going until it passes the limit")), maxSlugLen)
}
