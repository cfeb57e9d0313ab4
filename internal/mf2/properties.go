package mf2

import "net/url"

// HasProperty reports whether name is present with at least one value.
func HasProperty(doc *Document, name string) bool {
	if doc == nil {
		return false
	}
	return len(doc.Properties[name]) > 0
}

// First returns the first value of the named property.
func First(doc *Document, name string) (Value, bool) {
	if !HasProperty(doc, name) {
		return nil, false
	}
	return doc.Properties[name][0], true
}

// FirstText returns the first value of name when it is a plain string.
func FirstText(doc *Document, name string) (string, bool) {
	v, ok := First(doc, name)
	if !ok {
		return "", false
	}
	s, ok := v.(Text)
	return string(s), ok
}

// Strings returns every plain string value of name, in order.
func Strings(doc *Document, name string) []string {
	if !HasProperty(doc, name) {
		return nil
	}
	var out []string
	for _, v := range doc.Properties[name] {
		if s, ok := v.(Text); ok && s != "" {
			out = append(out, string(s))
		}
	}
	return out
}

// IsPropertyValidURL reports whether the first value of name is a plain
// string holding an absolute URL with both a scheme and a host.
func IsPropertyValidURL(doc *Document, name string) bool {
	s, ok := FirstText(doc, name)
	if !ok {
		return false
	}
	return IsValidURL(s)
}

// IsValidURL reports whether s is an absolute URL with a scheme and a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// ValidURLs returns the plain string values of name that are valid URLs.
func ValidURLs(doc *Document, name string) []string {
	var out []string
	for _, s := range Strings(doc, name) {
		if IsValidURL(s) {
			out = append(out, s)
		}
	}
	return out
}

// PrimaryType returns the document's first type, or DefaultType.
func PrimaryType(doc *Document) string {
	if doc == nil || len(doc.Types) == 0 || doc.Types[0] == "" {
		return DefaultType
	}
	return doc.Types[0]
}
