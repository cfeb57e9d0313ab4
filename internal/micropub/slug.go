package micropub

import (
	"strings"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/mf2"
)

const (
	maxSlugWords = 6
	maxSlugLen   = 60
)

// Slug picks the file name stem for doc: mp-slug, then name, then the first
// words of the content. A random UUID is used when none yields anything.
func Slug(doc *mf2.Document) string {
	if s := slugify(doc.Command("mp-slug")); s != "" {
		return s
	}
	if name, ok := mf2.FirstText(doc, "name"); ok {
		if s := slugify(firstWords(name)); s != "" {
			return s
		}
	}
	if text, err := mf2.PlainText(doc, "content"); err == nil {
		if s := slugify(firstWords(text)); s != "" {
			return s
		}
	}
	return uuid.NewString()
}

func firstWords(s string) string {
	words := strings.Fields(s)
	if len(words) > maxSlugWords {
		words = words[:maxSlugWords]
	}
	return strings.Join(words, " ")
}

// slugify lowercases s and keeps ASCII letters and digits, joining runs of
// anything else with a single hyphen.
func slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	return strings.TrimRight(b.String(), "-")
}
