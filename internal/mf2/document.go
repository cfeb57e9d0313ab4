// Package mf2 models microformats-2 documents as submitted to a Micropub
// endpoint and provides safe access to their properties.
package mf2

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultType is assumed when a document carries no type.
const DefaultType = "h-entry"

// Document is a microformats-2 object: {"type": [...], "properties": {...}}.
//
// A key present in Properties always maps to a non-empty slice. Micropub
// commands (mp-* keys) are kept apart from the properties.
type Document struct {
	Types      []string
	Properties map[string][]Value
	Commands   map[string][]string
	Action     string
	URL        string
}

// Value is one element of a property's value sequence. The concrete type is
// one of Text, HTML, Embedded or Opaque.
type Value interface {
	isValue()
}

// Text is a plain string value.
type Text string

// HTML is an object value carrying embedded markup and an optional plaintext
// alternative.
type HTML struct {
	HTML  string
	Value string
}

// Embedded is a nested microformat, e.g. an h-cite in in-reply-to.
type Embedded struct {
	Document *Document
}

// Opaque holds any other JSON shape (photo objects with alt text, numbers,
// booleans) as decoded by encoding/json.
type Opaque struct {
	Raw any
}

func (Text) isValue()     {}
func (HTML) isValue()     {}
func (Embedded) isValue() {}
func (Opaque) isValue()   {}

// Parse decodes a JSON-syntax Micropub request body.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

type wireDocument struct {
	Type       []string                   `json:"type"`
	Properties map[string]json.RawMessage `json:"properties"`
	Action     string                     `json:"action,omitempty"`
	URL        string                     `json:"url,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("mf2: decode document: %w", err)
	}

	d.Types = w.Type
	d.Action = w.Action
	d.URL = w.URL
	d.Properties = make(map[string][]Value, len(w.Properties))

	for name, raw := range w.Properties {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return &ValidationError{Property: name, Reason: "value must be an array"}
		}
		if len(items) == 0 {
			continue
		}

		if strings.HasPrefix(name, commandPrefix) {
			for _, item := range items {
				var s string
				if err := json.Unmarshal(item, &s); err == nil {
					d.addCommand(name, s)
				}
			}
			continue
		}

		values := make([]Value, 0, len(items))
		for _, item := range items {
			v, err := decodeValue(item)
			if err != nil {
				return &ValidationError{Property: name, Reason: err.Error()}
			}
			values = append(values, v)
		}
		d.Properties[name] = values
	}
	return nil
}

func decodeValue(raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return Text(s), nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, err
		}
		if h, ok := fields["html"]; ok {
			var markup string
			if err := json.Unmarshal(h, &markup); err == nil {
				var plain string
				if v, ok := fields["value"]; ok {
					_ = json.Unmarshal(v, &plain)
				}
				return HTML{HTML: markup, Value: plain}, nil
			}
		}
		if _, ok := fields["type"]; ok {
			var nested Document
			if err := json.Unmarshal(trimmed, &nested); err != nil {
				return nil, err
			}
			return Embedded{Document: &nested}, nil
		}
	}

	var anyValue any
	if err := json.Unmarshal(trimmed, &anyValue); err != nil {
		return nil, err
	}
	return Opaque{Raw: anyValue}, nil
}

// MarshalJSON implements json.Marshaler. Commands are written back as mp-*
// properties.
func (d *Document) MarshalJSON() ([]byte, error) {
	props := make(map[string][]any, len(d.Properties)+len(d.Commands))
	for name, values := range d.Properties {
		out := make([]any, 0, len(values))
		for _, v := range values {
			out = append(out, encodeValue(v))
		}
		props[name] = out
	}
	for name, values := range d.Commands {
		out := make([]any, 0, len(values))
		for _, v := range values {
			out = append(out, v)
		}
		props[name] = out
	}

	types := d.Types
	if types == nil {
		types = []string{}
	}
	return json.Marshal(struct {
		Type       []string         `json:"type"`
		Properties map[string][]any `json:"properties"`
		Action     string           `json:"action,omitempty"`
		URL        string           `json:"url,omitempty"`
	}{types, props, d.Action, d.URL})
}

func encodeValue(v Value) any {
	switch v := v.(type) {
	case Text:
		return string(v)
	case HTML:
		m := map[string]string{"html": v.HTML}
		if v.Value != "" {
			m["value"] = v.Value
		}
		return m
	case Embedded:
		return v.Document
	case Opaque:
		return v.Raw
	default:
		return nil
	}
}

// Command returns the first value of the mp-* command name, e.g. "mp-slug".
func (d *Document) Command(name string) string {
	if vs := d.Commands[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (d *Document) addCommand(name, value string) {
	if value == "" {
		return
	}
	if d.Commands == nil {
		d.Commands = make(map[string][]string)
	}
	d.Commands[name] = append(d.Commands[name], value)
}
