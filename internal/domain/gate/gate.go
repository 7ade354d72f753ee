// Package gate implements the security checks that assert an inbound event
// originated from the trusted managed gateway: host allow-listing, origin
// containment on the connect handshake, and the gateway identity check.
package gate

import (
	"log/slog"
	"strings"

	"github.com/sockgate/sockgate/internal/domain/event"
)

// DefaultUserAgentPrefix is the User-Agent prefix a managed API gateway
// sends; the deployment-specific gateway id is appended to it.
const DefaultUserAgentPrefix = "AmazonAPIGateway_"

// IdentityConfig holds the expected gateway identity. Set once at
// composition time, read-only thereafter.
type IdentityConfig struct {
	// GatewayID is the expected gateway deployment id. Empty means any
	// gateway deployment is accepted and only the prefix is checked.
	GatewayID string
	// UserAgentPrefix is the expected User-Agent prefix. Empty falls back
	// to DefaultUserAgentPrefix.
	UserAgentPrefix string
}

// SecurityGate evaluates the trust checks. Each check is a pure predicate
// over the event; failures are logged here and converted to rejections by
// the caller. Safe for unlimited concurrent readers.
type SecurityGate struct {
	identity     IdentityConfig
	allowedHosts map[string]struct{}
	hostList     []string
	logger       *slog.Logger
}

// New builds a SecurityGate. An empty allowedHosts list means any host is
// accepted.
func New(identity IdentityConfig, allowedHosts []string, logger *slog.Logger) *SecurityGate {
	if identity.UserAgentPrefix == "" {
		identity.UserAgentPrefix = DefaultUserAgentPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	hosts := make(map[string]struct{}, len(allowedHosts))
	list := make([]string, len(allowedHosts))
	copy(list, allowedHosts)
	for _, h := range allowedHosts {
		hosts[h] = struct{}{}
	}
	return &SecurityGate{
		identity:     identity,
		allowedHosts: hosts,
		hostList:     list,
		logger:       logger,
	}
}

// AllowedHosts returns a copy of the configured host allow-list.
func (g *SecurityGate) AllowedHosts() []string {
	out := make([]string, len(g.hostList))
	copy(out, g.hostList)
	return out
}

// ExpectedUserAgent returns the full User-Agent value the strict identity
// check requires. With no gateway id configured it returns the bare prefix.
func (g *SecurityGate) ExpectedUserAgent() string {
	return g.identity.UserAgentPrefix + g.identity.GatewayID
}

// AllowedHost reports whether the Host header is in the allow-list. An
// empty allow-list accepts any host.
func (g *SecurityGate) AllowedHost(ev *event.InboundEvent) bool {
	if len(g.allowedHosts) == 0 {
		return true
	}
	host := ev.Header("Host")
	if _, ok := g.allowedHosts[host]; !ok {
		g.logger.Warn("host not in allowed hosts",
			"status_code", 400,
			"host", host,
			"slug", ev.Slug(),
			"fingerprint", event.Fingerprint(ev),
		)
		return false
	}
	return true
}

// HostWithinOrigin reports whether the Host header value appears within the
// Origin header value. Origin carries the scheme as well, so containment is
// the handshake-forgery check, not equality.
func (g *SecurityGate) HostWithinOrigin(ev *event.InboundEvent) bool {
	host := ev.Header("Host")
	origin := ev.Header("Origin")
	if !strings.Contains(origin, host) {
		g.logger.Warn("host not within origin",
			"status_code", 400,
			"host", host,
			"origin", origin,
			"slug", ev.Slug(),
			"fingerprint", event.Fingerprint(ev),
		)
		return false
	}
	return true
}

// ExpectedIdentity reports whether the User-Agent header matches the
// trusted gateway identity. With a gateway id configured the header must
// equal prefix+id exactly; without one, the header only has to contain the
// prefix.
func (g *SecurityGate) ExpectedIdentity(ev *event.InboundEvent) bool {
	ua := ev.Header("User-Agent")
	ok := false
	if g.identity.GatewayID != "" {
		ok = ua == g.ExpectedUserAgent()
	} else {
		ok = strings.Contains(ua, g.identity.UserAgentPrefix)
	}
	if !ok {
		g.logger.Warn("unexpected gateway user agent",
			"status_code", 400,
			"expected", g.ExpectedUserAgent(),
			"received", ua,
			"slug", ev.Slug(),
			"fingerprint", event.Fingerprint(ev),
		)
	}
	return ok
}

// ExpectedAPIGatewayID reports whether the X-Amzn-Apigateway-Api-Id header
// matches the configured gateway id. Only meaningful when a gateway id is
// configured; unset accepts any value.
func (g *SecurityGate) ExpectedAPIGatewayID(ev *event.InboundEvent) bool {
	if g.identity.GatewayID == "" {
		return true
	}
	got := ev.Header("X-Amzn-Apigateway-Api-Id")
	if got != g.identity.GatewayID {
		g.logger.Warn("unexpected api gateway id",
			"status_code", 400,
			"expected", g.identity.GatewayID,
			"received", got,
			"slug", ev.Slug(),
			"fingerprint", event.Fingerprint(ev),
		)
		return false
	}
	return true
}
