// Package validation provides the header-contract checks that gate every
// inbound event before dispatch. It validates presence only; header values
// are checked by the security gate.
package validation

import (
	"github.com/sockgate/sockgate/internal/domain/event"
)

// DefaultRequiredHeaders is the header set a managed WebSocket gateway
// forwards on every request.
var DefaultRequiredHeaders = []string{
	"Host",
	"X-Real-Ip",
	"X-Forwarded-For",
	"X-Forwarded-Proto",
	"Connection",
	"Content-Length",
	"X-Forwarded-Port",
	"X-Amzn-Trace-Id",
	"Connectionid",
	"User-Agent",
	"X-Amzn-Apigateway-Api-Id",
}

// DefaultRequiredConnectionHeaders is the additional set present only on
// the connect handshake.
var DefaultRequiredConnectionHeaders = []string{
	"Cookie",
	"Origin",
	"Sec-Websocket-Extensions",
	"Sec-Websocket-Key",
	"Sec-Websocket-Version",
}

// HeaderValidator checks that an event carries the required header sets.
// Instances are immutable after construction and safe for concurrent use.
type HeaderValidator struct {
	required           []string
	requiredConnection []string
}

// NewHeaderValidator builds a validator for the given header sets. Nil or
// empty slices fall back to the defaults. Inputs are copied so no caller
// can mutate a validator after construction.
func NewHeaderValidator(required, requiredConnection []string) *HeaderValidator {
	if len(required) == 0 {
		required = DefaultRequiredHeaders
	}
	if len(requiredConnection) == 0 {
		requiredConnection = DefaultRequiredConnectionHeaders
	}
	v := &HeaderValidator{
		required:           make([]string, len(required)),
		requiredConnection: make([]string, len(requiredConnection)),
	}
	copy(v.required, required)
	copy(v.requiredConnection, requiredConnection)
	return v
}

// HasRequiredHeaders reports whether every general required header is
// present on the event. Pure predicate; the caller logs and rejects.
func (v *HeaderValidator) HasRequiredHeaders(ev *event.InboundEvent) bool {
	return hasAll(ev, v.required)
}

// HasRequiredConnectionHeaders reports whether every connect-handshake
// header is present on the event.
func (v *HeaderValidator) HasRequiredConnectionHeaders(ev *event.InboundEvent) bool {
	return hasAll(ev, v.requiredConnection)
}

// Required returns a copy of the general required header set.
func (v *HeaderValidator) Required() []string {
	out := make([]string, len(v.required))
	copy(out, v.required)
	return out
}

// RequiredConnection returns a copy of the connect-handshake header set.
func (v *HeaderValidator) RequiredConnection() []string {
	out := make([]string, len(v.requiredConnection))
	copy(out, v.requiredConnection)
	return out
}

func hasAll(ev *event.InboundEvent, names []string) bool {
	for _, name := range names {
		if !ev.HasHeader(name) {
			return false
		}
	}
	return true
}
