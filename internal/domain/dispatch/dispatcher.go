// Package dispatch implements the routing state machine for inbound gateway
// events. A single event is classified as connect, disconnect, or a
// route-keyed message, gated by the header and identity checks, and handed
// to the resolved handler.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sockgate/sockgate/internal/ctxkey"
	"github.com/sockgate/sockgate/internal/domain/connection"
	"github.com/sockgate/sockgate/internal/domain/event"
	"github.com/sockgate/sockgate/internal/domain/gate"
	"github.com/sockgate/sockgate/internal/domain/validation"
)

// DefaultRouteSelectionKey is the body field that names the handler for
// message events.
const DefaultRouteSelectionKey = "action"

// DefaultRouteName is the registry key of the fallback handler consulted
// when a route value has no registered entry.
const DefaultRouteName = "default"

// DefaultMethods is the verb allow-list applied when none is configured.
var DefaultMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodHead, http.MethodOptions, http.MethodTrace,
}

// Handler processes one classified event and produces a Response. The
// context carries the resolved caller identity on disconnect and message
// paths when the store knows the connection.
type Handler func(ctx context.Context, ev *event.InboundEvent) (event.Response, error)

// Config assembles a Dispatcher. Zero fields fall back to defaults.
type Config struct {
	// Headers validates required header presence. Defaults to the
	// standard gateway sets.
	Headers *validation.HeaderValidator
	// Gate runs the trust checks. Required.
	Gate *gate.SecurityGate
	// Store persists connection-identity associations. Defaults to
	// connection.NopStore.
	Store connection.Store
	// RouteSelectionKey is the body field naming the handler. Defaults to
	// DefaultRouteSelectionKey.
	RouteSelectionKey string
	// Methods is the allowed verb set. Defaults to DefaultMethods.
	Methods []string
	// Logger receives structured rejection logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// Dispatcher routes inbound events. The route registry is populated at
// composition time and read-only afterwards, so a Dispatcher is safe for
// unlimited concurrent Dispatch calls.
type Dispatcher struct {
	headers  *validation.HeaderValidator
	gate     *gate.SecurityGate
	store    connection.Store
	routeKey string
	methods  map[string]struct{}
	routes   map[string]Handler
	logger   *slog.Logger
}

// New creates a Dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	if cfg.Headers == nil {
		cfg.Headers = validation.NewHeaderValidator(nil, nil)
	}
	if cfg.Store == nil {
		cfg.Store = connection.NopStore{}
	}
	if cfg.RouteSelectionKey == "" {
		cfg.RouteSelectionKey = DefaultRouteSelectionKey
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = DefaultMethods
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	methods := make(map[string]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[strings.ToUpper(m)] = struct{}{}
	}
	return &Dispatcher{
		headers:  cfg.Headers,
		gate:     cfg.Gate,
		store:    cfg.Store,
		routeKey: cfg.RouteSelectionKey,
		methods:  methods,
		routes:   make(map[string]Handler),
		logger:   cfg.Logger,
	}
}

// Register adds a handler for a route key. Must be called before the
// dispatcher starts serving; the registry is not synchronized. Registering
// DefaultRouteName replaces the built-in not-implemented fallback. The
// lifecycle slugs are not route keys and cannot be registered.
func (d *Dispatcher) Register(key string, h Handler) error {
	if key == "" {
		return errors.New("route key must not be empty")
	}
	if h == nil {
		return fmt.Errorf("route %q: handler must not be nil", key)
	}
	if key == event.SlugConnect || key == event.SlugDisconnect {
		return fmt.Errorf("route %q: lifecycle slugs are dispatched internally", key)
	}
	if _, exists := d.routes[key]; exists {
		return fmt.Errorf("route %q: already registered", key)
	}
	d.routes[key] = h
	return nil
}

// RouteSelectionKey returns the configured route selection key.
func (d *Dispatcher) RouteSelectionKey() string { return d.routeKey }

// Dispatch classifies and routes one event. Validation and security
// rejections come back as BadRequest or MethodNotAllowed responses with a
// nil error. A non-nil error means an unregistered route reached the
// default fallback (KindNotImplementedRoute) or a registered handler
// failed; neither is a normal client-facing outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *event.InboundEvent) (event.Response, error) {
	if !d.headers.HasRequiredHeaders(ev) {
		return d.missingHeaders(ev), nil
	}
	if _, ok := d.methods[strings.ToUpper(ev.Method())]; !ok {
		return d.methodNotAllowed(ev), nil
	}

	switch ev.Slug() {
	case event.SlugConnect:
		// Identity is not checked here; the connect handler runs its own
		// handshake checks.
		return d.connect(ctx, ev)

	case event.SlugDisconnect:
		if !d.gate.ExpectedIdentity(ev) {
			return d.invalidUserAgent(ev), nil
		}
		return d.disconnect(d.attachIdentity(ctx, ev), ev)

	default:
		raw, ok := ev.Body()[d.routeKey]
		if !ok {
			return d.routeSelectionKeyMissing(ev), nil
		}
		// Only string values can name a route; anything else resolves to
		// the default fallback.
		key, _ := raw.(string)
		handler := d.resolve(key)
		if !d.gate.ExpectedIdentity(ev) {
			return d.invalidUserAgent(ev), nil
		}
		return handler(d.attachIdentity(ctx, ev), ev)
	}
}

// resolve maps a route value to its handler, falling back to the
// registered default or the built-in not-implemented fallback.
func (d *Dispatcher) resolve(key string) Handler {
	if h, ok := d.routes[key]; ok {
		return h
	}
	if h, ok := d.routes[DefaultRouteName]; ok {
		return h
	}
	return func(ctx context.Context, ev *event.InboundEvent) (event.Response, error) {
		return event.Response{}, NewError(KindNotImplementedRoute,
			fmt.Sprintf("no handler registered for route %q", key))
	}
}

// attachIdentity resolves the caller identity for the event's connection
// and attaches it to the context. An unknown connection is not an error;
// the context is returned unchanged.
func (d *Dispatcher) attachIdentity(ctx context.Context, ev *event.InboundEvent) context.Context {
	identity, err := d.store.FindIdentityByConnectionID(ctx, ev.ConnectionID())
	if err != nil {
		if !errors.Is(err, connection.ErrConnectionNotFound) {
			d.logger.Warn("identity lookup failed",
				"connection_id", ev.ConnectionID(),
				"error", err,
			)
		}
		return ctx
	}
	return ContextWithIdentity(ctx, identity)
}

// ContextWithIdentity returns ctx carrying the resolved caller identity.
func ContextWithIdentity(ctx context.Context, identity connection.Identity) context.Context {
	return context.WithValue(ctx, ctxkey.IdentityKey{}, identity)
}

// IdentityFromContext returns the caller identity attached by the
// dispatcher, if any.
func IdentityFromContext(ctx context.Context) (connection.Identity, bool) {
	identity, ok := ctx.Value(ctxkey.IdentityKey{}).(connection.Identity)
	return identity, ok
}
