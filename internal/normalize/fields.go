package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// object decodes raw as a JSON object. Anything else yields nil.
func object(raw []byte) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// lookup returns the first present, non-null field among keys.
func lookup(m map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// str reads a JSON string. Numbers are formatted; other kinds are ignored.
func str(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// num reads a JSON number or a numeric string. NaN and Inf are rejected.
func num(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// boolean reads a JSON bool, or the strings "true"/"false", or 0/1.
func boolean(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	if s, ok := str(raw); ok {
		if v, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return false, false
}

// array decodes raw as a JSON array of raw elements.
func array(raw json.RawMessage) ([]json.RawMessage, bool) {
	var a []json.RawMessage
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false
	}
	return a, true
}

func fieldStr(m map[string]json.RawMessage, keys ...string) string {
	if v, ok := lookup(m, keys...); ok {
		s, _ := str(v)
		return s
	}
	return ""
}

func fieldNum(m map[string]json.RawMessage, keys ...string) (float64, bool) {
	if v, ok := lookup(m, keys...); ok {
		return num(v)
	}
	return 0, false
}
