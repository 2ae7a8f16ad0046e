// Package normalize coerces loosely-typed backend payloads into the shapes
// the sessions work with. Nothing in this package panics or returns an error
// on malformed input unless the caller needs to branch on it; missing data
// becomes a documented default.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NoAnswer replaces a missing or blank chat answer.
const NoAnswer = "Sorry, I couldn't get an answer."

// Media is one inline media reference attached to an answer.
type Media struct {
	Reference string `json:"reference"`
	Label     string `json:"label"`
	Page      *int   `json:"page,omitempty"`
}

// Caption renders the label with its page, e.g. "manual.pdf (p. 4)".
func (m Media) Caption() string {
	if m.Page == nil {
		return m.Label
	}
	if m.Label == "" {
		return "p. " + strconv.Itoa(*m.Page)
	}
	return m.Label + " (p. " + strconv.Itoa(*m.Page) + ")"
}

// Reply is the normalized body of an assistant answer.
type Reply struct {
	Content string
	Sources []string
	Media   []Media
}

// ChatResponse normalizes a chat response body. Any input, including invalid
// JSON, yields a usable Reply.
//
// Accepted keys: answer|respuesta, sources|fuentes, images|imagenes|media.
// Sources may be a list of strings or one pre-formatted string. Media entries
// may be bare strings or {src, source, page} objects.
func ChatResponse(raw []byte) Reply {
	r := Reply{Content: NoAnswer, Sources: []string{}, Media: []Media{}}

	m := object(raw)
	if m == nil {
		return r
	}

	if s := fieldStr(m, "answer", "respuesta", "response"); strings.TrimSpace(s) != "" {
		r.Content = s
	}
	if v, ok := lookup(m, "sources", "fuentes"); ok {
		r.Sources = sources(v)
	}
	if v, ok := lookup(m, "images", "imagenes", "media"); ok {
		r.Media = media(v)
	}
	return r
}

func sources(raw json.RawMessage) []string {
	out := []string{}
	if s, ok := str(raw); ok {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
		return out
	}
	items, ok := array(raw)
	if !ok {
		return out
	}
	for _, it := range items {
		if s, ok := str(it); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func media(raw json.RawMessage) []Media {
	out := []Media{}
	items, ok := array(raw)
	if !ok {
		return out
	}
	for _, it := range items {
		if s, ok := str(it); ok {
			if s != "" {
				out = append(out, Media{Reference: s})
			}
			continue
		}
		obj := object(it)
		if obj == nil {
			continue
		}
		ref := fieldStr(obj, "src", "url", "path")
		if ref == "" {
			continue
		}
		entry := Media{
			Reference: ref,
			Label:     fieldStr(obj, "source", "fuente", "label"),
		}
		if p, ok := fieldNum(obj, "page", "pagina"); ok && p == math.Trunc(p) {
			page := int(p)
			entry.Page = &page
		}
		out = append(out, entry)
	}
	return out
}

// MediaURL composes the URL a media reference is served from. Absolute
// http(s) references are returned unchanged.
func MediaURL(base, ref string) string {
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	base = strings.TrimRight(base, "/")
	if strings.HasPrefix(ref, "/") {
		return base + ref
	}
	return base + "/" + ref
}
