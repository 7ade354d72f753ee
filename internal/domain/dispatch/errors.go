package dispatch

import "fmt"

// Kind classifies a dispatch rejection.
type Kind int

const (
	// KindMissingHeaders means the general required header set was incomplete.
	KindMissingHeaders Kind = iota + 1
	// KindMissingConnectionHeaders means the connect-handshake header set
	// was incomplete.
	KindMissingConnectionHeaders
	// KindRouteSelectionKeyMissing means a message event carried no route
	// selection key in its body.
	KindRouteSelectionKeyMissing
	// KindInvalidUserAgent means the gateway identity check failed.
	KindInvalidUserAgent
	// KindHostNotAllowed means the Host header failed the allow-list check.
	KindHostNotAllowed
	// KindHostNotInOrigin means the Host header was not contained in Origin.
	KindHostNotInOrigin
	// KindMethodNotAllowed means the HTTP verb is unsupported.
	KindMethodNotAllowed
	// KindNotImplementedRoute means a route key resolved to the default
	// handler. This is a deployment configuration error, not a normal
	// client-facing rejection.
	KindNotImplementedRoute
)

// String returns the snake_case name of the kind, used as a metrics label
// and log field.
func (k Kind) String() string {
	switch k {
	case KindMissingHeaders:
		return "missing_headers"
	case KindMissingConnectionHeaders:
		return "missing_connection_headers"
	case KindRouteSelectionKeyMissing:
		return "route_selection_key_missing"
	case KindInvalidUserAgent:
		return "invalid_useragent"
	case KindHostNotAllowed:
		return "host_not_allowed"
	case KindHostNotInOrigin:
		return "host_not_in_origin"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindNotImplementedRoute:
		return "not_implemented_route"
	default:
		return "unknown"
	}
}

// Error is a classified dispatch failure.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Message is the human-readable rejection text, safe to return to the
	// gateway.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("dispatch error %s: %s", e.Kind, e.Message)
}

// NewError creates a dispatch Error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
