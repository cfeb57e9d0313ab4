package mf2

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/raido/internal/apperr"
)

// ContentKind tells whether a resolved value is plain text or markup.
type ContentKind string

// Content kinds.
const (
	KindPlaintext ContentKind = "plaintext"
	KindHTML      ContentKind = "html"
)

// Content is a property value resolved to plain text or embedded HTML.
type Content struct {
	Kind  ContentKind `json:"type"`
	Value string      `json:"value"`
}

// ValidationError reports a property whose value has a shape the caller
// cannot use.
type ValidationError struct {
	Property string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mf2: property %q: %s", e.Property, e.Reason)
}

// Is lets callers match with errors.Is(err, apperr.ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == apperr.ErrValidation
}

// ContentAndType resolves the first value of name. An absent property
// resolves to empty plaintext. Values that are neither strings nor objects
// with an html field are a *ValidationError.
func ContentAndType(doc *Document, name string) (Content, error) {
	v, ok := First(doc, name)
	if !ok {
		return Content{Kind: KindPlaintext}, nil
	}

	switch v := v.(type) {
	case Text:
		return Content{Kind: KindPlaintext, Value: string(v)}, nil
	case HTML:
		return Content{Kind: KindHTML, Value: v.HTML}, nil
	case Embedded:
		return Content{}, &ValidationError{Property: name, Reason: "nested microformat where text or html is required"}
	case Opaque:
		return Content{}, &ValidationError{Property: name, Reason: "expected a string or an object with an html field"}
	default:
		return Content{}, &ValidationError{Property: name, Reason: fmt.Sprintf("unsupported value %T", v)}
	}
}

// PlainText returns the text view of name: strings as-is, HTML objects by
// their value field or, when that is empty, their markup with tags removed.
func PlainText(doc *Document, name string) (string, error) {
	v, ok := First(doc, name)
	if !ok {
		return "", nil
	}
	if h, isHTML := v.(HTML); isHTML && h.Value != "" {
		return h.Value, nil
	}

	c, err := ContentAndType(doc, name)
	if err != nil {
		return "", err
	}
	if c.Kind == KindHTML {
		return StripTags(c.Value), nil
	}
	return c.Value, nil
}

// StripTags returns the text nodes of an HTML fragment, unescaped. Block
// boundaries become a single space.
func StripTags(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if _, ok := blockElements[atom.Lookup(name)]; ok {
				b.WriteByte(' ')
			}
		}
	}
}

var blockElements = map[atom.Atom]struct{}{
	atom.P: {}, atom.Div: {}, atom.Br: {}, atom.Li: {}, atom.Blockquote: {},
	atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {},
}
