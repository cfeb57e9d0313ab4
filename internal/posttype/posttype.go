// Package posttype implements post type discovery over mf2 documents and the
// mapping from post types to page templates.
package posttype

import (
	"fmt"
	"strings"

	"github.com/starford/raido/internal/mf2"
)

// Type is the semantic category of a post.
type Type string

// Post types.
const (
	Note     Type = "note"
	Article  Type = "article"
	Reply    Type = "reply"
	Like     Type = "like"
	RSVP     Type = "rsvp"
	Bookmark Type = "bookmark"
	Repost   Type = "repost"
	Photo    Type = "photo"
	Video    Type = "video"
)

// All returns every post type.
func All() []Type {
	return []Type{Note, Article, Reply, Like, RSVP, Bookmark, Repost, Photo, Video}
}

// Parse converts a name such as "reply" into a Type.
func Parse(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("posttype: unknown post type %q", s)
}

func (t Type) String() string { return string(t) }

// Rule is one step of the discovery chain.
type Rule struct {
	Name   string
	Match  func(doc *mf2.Document) bool
	Result Type
}

var rules = []Rule{
	{Name: "rsvp", Match: hasRSVP, Result: RSVP},
	{Name: "in-reply-to", Match: has("in-reply-to"), Result: Reply},
	{Name: "like-of", Match: has("like-of"), Result: Like},
	{Name: "repost-of", Match: has("repost-of"), Result: Repost},
	{Name: "bookmark-of", Match: has("bookmark-of"), Result: Bookmark},
	{Name: "photo", Match: has("photo"), Result: Photo},
	{Name: "video", Match: has("video"), Result: Video},
	{Name: "name", Match: hasDistinctName, Result: Article},
}

// Rules returns the discovery chain in evaluation order. Documents matching
// none of them are notes.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify returns the post type of doc. The first matching rule wins.
func Classify(doc *mf2.Document) Type {
	t, _ := Explain(doc)
	return t
}

// Explain is Classify that also names the rule that decided. The name is
// empty for the note fallback.
func Explain(doc *mf2.Document) (Type, string) {
	for _, r := range rules {
		if r.Match(doc) {
			return r.Result, r.Name
		}
	}
	return Note, ""
}

func has(name string) func(*mf2.Document) bool {
	return func(doc *mf2.Document) bool {
		return mf2.HasProperty(doc, name)
	}
}

func hasRSVP(doc *mf2.Document) bool {
	v, ok := mf2.First(doc, "rsvp")
	if !ok {
		return false
	}
	s, isText := v.(mf2.Text)
	return isText && strings.TrimSpace(string(s)) != ""
}

// hasDistinctName reports whether name is a real title rather than the
// leading text of the content: both are whitespace-normalised and the name
// must not be a prefix of the content.
func hasDistinctName(doc *mf2.Document) bool {
	name, err := mf2.PlainText(doc, "name")
	if err != nil {
		return false
	}
	name = normalize(name)
	if name == "" {
		return false
	}

	source := "content"
	if !mf2.HasProperty(doc, source) {
		source = "summary"
	}
	content, err := mf2.PlainText(doc, source)
	if err != nil {
		content = ""
	}
	return !strings.HasPrefix(normalize(content), name)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
