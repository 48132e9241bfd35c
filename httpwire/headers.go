package httpwire

import "strings"

// Header is a single name/value pair as it appears on the wire.
type Header struct {
	Name  string
	Value string
}

// Headers is a case-insensitive multimap of header names to values. It also remembers the order in
// which the pairs were added, so that a request can be written out exactly as it was defined.
//
// The zero value is an empty set of headers ready to use.
type Headers struct {
	pairs  []Header
	byName map[string][]string
}

// NewHeaders creates a Headers instance containing the given pairs in order.
func NewHeaders(pairs ...Header) Headers {
	var h Headers
	for _, p := range pairs {
		h.Add(p.Name, p.Value)
	}
	return h
}

func canonicalName(name string) string {
	return strings.ToLower(name)
}

// Add appends a value for the given header name. Copies of a Headers value never see each
// other's additions, since Add replaces the internal storage instead of writing into it.
func (h *Headers) Add(name, value string) {
	key := canonicalName(name)
	byName := make(map[string][]string, len(h.byName)+1)
	for k, v := range h.byName {
		byName[k] = v[:len(v):len(v)]
	}
	byName[key] = append(byName[key], value)
	h.byName = byName
	h.pairs = append(h.pairs[:len(h.pairs):len(h.pairs)], Header{Name: name, Value: value})
}

// Values returns all values for the header name in the order they were added, or nil.
func (h Headers) Values(name string) []string {
	values := h.byName[canonicalName(name)]
	if len(values) == 0 {
		return nil
	}
	return append([]string(nil), values...)
}

// Get returns the first value for the header name, or "" if there is none.
func (h Headers) Get(name string) string {
	if values := h.byName[canonicalName(name)]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Last returns the last value for the header name. When a header is repeated, the last value wins
// for framing decisions such as Transfer-Encoding and Content-Length.
func (h Headers) Last(name string) (string, bool) {
	values := h.byName[canonicalName(name)]
	if len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

// Has returns true if at least one value exists for the header name.
func (h Headers) Has(name string) bool {
	return len(h.byName[canonicalName(name)]) > 0
}

// Pairs returns a copy of all name/value pairs in insertion order, with the names spelled the way
// they were added.
func (h Headers) Pairs() []Header {
	return append([]Header(nil), h.pairs...)
}

// Len returns the number of pairs.
func (h Headers) Len() int {
	return len(h.pairs)
}

// Clone returns a deep copy.
func (h Headers) Clone() Headers {
	return NewHeaders(h.pairs...)
}
