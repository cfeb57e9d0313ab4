package mf2

import (
	"net/url"
	"sort"
	"strings"
)

const commandPrefix = "mp-"

// Keys of a form-encoded request that are never properties.
var reservedFormKeys = map[string]struct{}{
	"access_token": {},
	"h":            {},
	"action":       {},
	"url":          {},
}

// FromForm builds a document from a form-encoded Micropub request body.
//
// h=entry becomes type h-entry, array keys such as category[] are folded
// into category, and mp-* keys become commands. Empty values are dropped.
func FromForm(form url.Values) *Document {
	doc := &Document{
		Types:      []string{DefaultType},
		Properties: make(map[string][]Value),
		Action:     form.Get("action"),
		URL:        form.Get("url"),
	}
	if h := strings.TrimSpace(form.Get("h")); h != "" {
		doc.Types = []string{"h-" + h}
	}

	// Deterministic order so name and name[] merge the same way every time.
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, reserved := reservedFormKeys[key]; reserved {
			continue
		}
		name := strings.TrimSuffix(key, "[]")
		if name == "" || strings.ContainsAny(name, "[]") {
			continue
		}

		for _, v := range form[key] {
			if v == "" {
				continue
			}
			if strings.HasPrefix(name, commandPrefix) {
				doc.addCommand(name, v)
				continue
			}
			doc.Properties[name] = append(doc.Properties[name], Text(v))
		}
	}
	return doc
}
