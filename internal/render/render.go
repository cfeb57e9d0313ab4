// Package render turns an mf2 document into the HTML body stored for a post.
//
// Every fragment carries microformat class names so the stored body can be
// parsed back as mf2.
package render

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/raido/internal/mf2"
	"github.com/starford/raido/internal/posttype"
)

// Class names used in rendered fragments.
const (
	ClassContentText = "p-content"
	ClassContentHTML = "e-content"
	ClassMedia       = "media"
	ClassPhoto       = "u-photo"
	ClassVideo       = "u-video"
	ClassRSVP        = "p-rsvp"
	ClassRSVPWrapper = "rsvp-response"
	ClassSyndication = "u-syndication"
	ClassSyndWrapper = "syndication"
)

// Options control rendering.
type Options struct {
	// WrapRoot encloses the fragments in a div classed with the document's
	// primary type, e.g. <div class="h-entry">.
	WrapRoot bool
}

type contextRule struct {
	property string
	label    string
	wrapper  string
}

// Context line for post types that respond to another URL.
var contexts = map[posttype.Type]contextRule{
	posttype.Reply:    {property: "in-reply-to", label: "In reply to", wrapper: "reply-context"},
	posttype.RSVP:     {property: "in-reply-to", label: "RSVP to", wrapper: "rsvp-context"},
	posttype.Like:     {property: "like-of", label: "Liked", wrapper: "like-context"},
	posttype.Repost:   {property: "repost-of", label: "Reposted", wrapper: "repost-context"},
	posttype.Bookmark: {property: "bookmark-of", label: "Bookmarked", wrapper: "bookmark-context"},
}

var rsvpLabels = map[string]string{
	"yes":        "Going",
	"no":         "Not going",
	"maybe":      "Maybe",
	"interested": "Interested",
}

// Render builds the content body for doc classified as t. Fragments appear
// in a fixed order, each on its own line: response context, media, content,
// RSVP, syndication. A malformed content value is returned as an error and no
// body is produced.
func Render(doc *mf2.Document, t posttype.Type, opts Options) (string, error) {
	content, err := renderContent(doc)
	if err != nil {
		return "", err
	}

	fragments := []string{
		renderContext(doc, t),
		renderMedia(doc),
		content,
		renderRSVP(doc, t),
		renderSyndication(doc),
	}

	var b strings.Builder
	if opts.WrapRoot {
		fmt.Fprintf(&b, `<div class="%s">`, escape(mf2.PrimaryType(doc)))
	}
	for _, f := range fragments {
		if f == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(f)
	}
	if opts.WrapRoot {
		b.WriteString("\n</div>")
	}
	return b.String(), nil
}

// ContextProperty returns the property holding the URL t responds to, if any.
func ContextProperty(t posttype.Type) (string, bool) {
	rule, ok := contexts[t]
	return rule.property, ok
}

func renderContext(doc *mf2.Document, t posttype.Type) string {
	rule, ok := contexts[t]
	if !ok || !mf2.IsPropertyValidURL(doc, rule.property) {
		return ""
	}
	target, _ := mf2.FirstText(doc, rule.property)
	return fmt.Sprintf(`<p class="%s">%s %s</p>`, rule.wrapper, rule.label, link("u-"+rule.property, target, target))
}

func renderMedia(doc *mf2.Document) string {
	var items []string
	for _, p := range photos(doc) {
		items = append(items, fmt.Sprintf(`<img class="%s" src="%s" alt="%s">`, ClassPhoto, escape(p.url), escape(p.alt)))
	}
	for _, v := range mf2.ValidURLs(doc, "video") {
		items = append(items, fmt.Sprintf(`<video class="%s" src="%s" controls></video>`, ClassVideo, escape(v)))
	}
	if len(items) == 0 {
		return ""
	}
	return fmt.Sprintf(`<p class="%s">%s</p>`, ClassMedia, strings.Join(items, ""))
}

type photo struct {
	url string
	alt string
}

// photos accepts plain URLs and {"value": url, "alt": text} objects.
func photos(doc *mf2.Document) []photo {
	var out []photo
	for _, v := range doc.Properties["photo"] {
		switch v := v.(type) {
		case mf2.Text:
			if mf2.IsValidURL(string(v)) {
				out = append(out, photo{url: string(v)})
			}
		case mf2.Opaque:
			m, ok := v.Raw.(map[string]any)
			if !ok {
				continue
			}
			u, _ := m["value"].(string)
			alt, _ := m["alt"].(string)
			if mf2.IsValidURL(u) {
				out = append(out, photo{url: u, alt: alt})
			}
		}
	}
	return out
}

func renderContent(doc *mf2.Document) (string, error) {
	c, err := mf2.ContentAndType(doc, "content")
	if err != nil {
		return "", err
	}

	switch c.Kind {
	case mf2.KindHTML:
		if strings.TrimSpace(c.Value) == "" {
			return "", nil
		}
		return fmt.Sprintf(`<div class="%s">%s</div>`, ClassContentHTML, c.Value), nil
	default:
		paras := paragraphs(c.Value)
		switch len(paras) {
		case 0:
			return "", nil
		case 1:
			return fmt.Sprintf(`<p class="%s">%s</p>`, ClassContentText, paras[0]), nil
		default:
			return fmt.Sprintf(`<div class="%s"><p>%s</p></div>`, ClassContentHTML, strings.Join(paras, "</p><p>")), nil
		}
	}
}

// paragraphs splits plain text on blank lines, escapes each paragraph and
// turns its remaining line breaks into <br>.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		for i, l := range lines {
			lines[i] = escape(l)
		}
		out = append(out, strings.Join(lines, "<br>"))
	}
	return out
}

func renderRSVP(doc *mf2.Document, t posttype.Type) string {
	if t != posttype.RSVP {
		return ""
	}
	value, ok := mf2.FirstText(doc, "rsvp")
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return ""
	}
	label, known := rsvpLabels[strings.ToLower(value)]
	if !known {
		label = value
	}
	return fmt.Sprintf(`<p class="%s">RSVP: <data class="%s" value="%s">%s</data></p>`,
		ClassRSVPWrapper, ClassRSVP, escape(strings.ToLower(value)), escape(label))
}

func renderSyndication(doc *mf2.Document) string {
	urls := mf2.ValidURLs(doc, "syndication")
	if len(urls) == 0 {
		return ""
	}
	links := make([]string, 0, len(urls))
	for _, u := range urls {
		text := u
		if parsed, err := url.Parse(u); err == nil {
			text = parsed.Host
		}
		links = append(links, link(ClassSyndication, u, text))
	}
	return fmt.Sprintf(`<p class="%s">Also on: %s</p>`, ClassSyndWrapper, strings.Join(links, ", "))
}

func link(class, href, text string) string {
	return fmt.Sprintf(`<a class="%s" href="%s">%s</a>`, class, escape(href), escape(text))
}

func escape(s string) string {
	return html.EscapeString(s)
}
