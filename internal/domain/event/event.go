// Package event defines the inbound event model the gateway dispatches on.
// An InboundEvent is the gateway-forwarded shape of a single WebSocket
// lifecycle or message request; it is immutable once constructed.
package event

import (
	"encoding/json"
	"fmt"
	"net/textproto"
	"net/url"
	"sort"
)

// Well-known lifecycle slugs. The managed gateway forwards $connect and
// $disconnect routes under these path segments; everything else is an
// application message route.
const (
	SlugConnect    = "connect"
	SlugDisconnect = "disconnect"
)

// HeaderConnectionID is the header carrying the gateway-assigned
// connection identifier.
const HeaderConnectionID = "Connectionid"

// Headers is a case-insensitive header mapping. Keys are stored in
// canonical MIME form so lookups match regardless of caller casing.
type Headers map[string]string

// NewHeaders builds a Headers map from raw name/value pairs, canonicalizing
// the names.
func NewHeaders(raw map[string]string) Headers {
	h := make(Headers, len(raw))
	for name, value := range raw {
		h.Set(name, value)
	}
	return h
}

// Set stores value under the canonical form of name.
func (h Headers) Set(name, value string) {
	h[textproto.CanonicalMIMEHeaderKey(name)] = value
}

// Get returns the value for name, or "" if absent.
func (h Headers) Get(name string) string {
	return h[textproto.CanonicalMIMEHeaderKey(name)]
}

// Has reports whether name is present, regardless of case.
func (h Headers) Has(name string) bool {
	_, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	return ok
}

// Names returns the canonical header names in sorted order. Used when
// building expected-vs-received rejection messages.
func (h Headers) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InboundEvent is a single gateway-forwarded request. The decoded body is
// derived exactly once at construction and never mutated afterwards.
type InboundEvent struct {
	method  string
	slug    string
	headers Headers
	query   url.Values
	rawBody []byte
	body    map[string]any
}

// New constructs an InboundEvent, decoding the JSON body once. An empty or
// nil rawBody yields an empty decoded body. A non-empty body that is not a
// JSON object is a construction error; the transport surfaces it as a bad
// request before dispatch runs.
func New(method, slug string, headers Headers, query url.Values, rawBody []byte) (*InboundEvent, error) {
	body := map[string]any{}
	if len(rawBody) > 0 {
		if err := json.Unmarshal(rawBody, &body); err != nil {
			return nil, fmt.Errorf("decode request body: %w", err)
		}
	}
	if headers == nil {
		headers = Headers{}
	}
	if query == nil {
		query = url.Values{}
	}
	return &InboundEvent{
		method:  method,
		slug:    slug,
		headers: headers,
		query:   query,
		rawBody: rawBody,
		body:    body,
	}, nil
}

// Method returns the HTTP verb of the request.
func (e *InboundEvent) Method() string { return e.method }

// Slug returns the transport-level route segment (connect, disconnect, or
// an application-defined value).
func (e *InboundEvent) Slug() string { return e.slug }

// Header returns the value of the named header, case-insensitively.
func (e *InboundEvent) Header(name string) string { return e.headers.Get(name) }

// HasHeader reports whether the named header is present.
func (e *InboundEvent) HasHeader(name string) bool { return e.headers.Has(name) }

// HeaderNames returns the sorted canonical names of all received headers.
func (e *InboundEvent) HeaderNames() []string { return e.headers.Names() }

// Query returns the first value of the named querystring parameter.
func (e *InboundEvent) Query(name string) string { return e.query.Get(name) }

// ConnectionID returns the gateway-assigned connection identifier, or ""
// when the header is absent.
func (e *InboundEvent) ConnectionID() string { return e.headers.Get(HeaderConnectionID) }

// Body returns the decoded request body. Callers must treat the returned
// map as read-only.
func (e *InboundEvent) Body() map[string]any { return e.body }

// RawBody returns a copy of the undecoded body bytes.
func (e *InboundEvent) RawBody() []byte {
	raw := make([]byte, len(e.rawBody))
	copy(raw, e.rawBody)
	return raw
}
