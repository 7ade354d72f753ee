package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/sockgate/sockgate/internal/domain/connection"
	"github.com/sockgate/sockgate/internal/domain/event"
)

// reject logs a rejection with its structured context and returns the
// BadRequest response carrying the same message.
func (d *Dispatcher) reject(ev *event.InboundEvent, kind Kind, msg string) event.Response {
	d.logger.Warn(msg,
		"status_code", 400,
		"kind", kind.String(),
		"slug", ev.Slug(),
		"connection_id", ev.ConnectionID(),
		"fingerprint", event.Fingerprint(ev),
	)
	return event.Reject(msg)
}

func (d *Dispatcher) missingHeaders(ev *event.InboundEvent) event.Response {
	msg := fmt.Sprintf("Some of the required headers are missing; Expected %v, Received %v",
		d.headers.Required(), ev.HeaderNames())
	return d.reject(ev, KindMissingHeaders, msg)
}

func (d *Dispatcher) invalidUserAgent(ev *event.InboundEvent) event.Response {
	msg := fmt.Sprintf("Unexpected Useragent; Expected %s, Received %s",
		d.gate.ExpectedUserAgent(), ev.Header("User-Agent"))
	return d.reject(ev, KindInvalidUserAgent, msg)
}

func (d *Dispatcher) routeSelectionKeyMissing(ev *event.InboundEvent) event.Response {
	msg := fmt.Sprintf("route selection key %q missing from request body", d.routeKey)
	return d.reject(ev, KindRouteSelectionKeyMissing, msg)
}

func (d *Dispatcher) methodNotAllowed(ev *event.InboundEvent) event.Response {
	msg := fmt.Sprintf("method %s not allowed", ev.Method())
	d.logger.Warn(msg,
		"status_code", 405,
		"kind", KindMethodNotAllowed.String(),
		"slug", ev.Slug(),
		"fingerprint", event.Fingerprint(ev),
	)
	return event.RejectMethod(msg)
}

// connect handles the connection handshake. The checks run in strict order
// and short-circuit on the first failure; once all pass the connection is
// recorded and the handshake unconditionally succeeds, whether or not the
// store accepted the record.
func (d *Dispatcher) connect(ctx context.Context, ev *event.InboundEvent) (event.Response, error) {
	if !d.headers.HasRequiredConnectionHeaders(ev) {
		msg := fmt.Sprintf("Missing headers; Expected %v, Received %v",
			d.headers.RequiredConnection(), ev.HeaderNames())
		return d.reject(ev, KindMissingConnectionHeaders, msg), nil
	}

	if !d.gate.AllowedHost(ev) {
		msg := fmt.Sprintf("Host %s not in AllowedHosts %v",
			ev.Header("Host"), d.gate.AllowedHosts())
		return d.reject(ev, KindHostNotAllowed, msg), nil
	}

	if !d.gate.HostWithinOrigin(ev) {
		msg := fmt.Sprintf("Host %s not in Origin %s",
			ev.Header("Host"), ev.Header("Origin"))
		return d.reject(ev, KindHostNotInOrigin, msg), nil
	}

	identity, _ := IdentityFromContext(ctx)
	channel := ev.Query("channel")
	if err := d.store.RecordConnection(ctx, identity, ev.ConnectionID(), channel); err != nil {
		// Persistence is an extension hook; the handshake succeeds anyway.
		d.logger.Error("failed to record connection",
			"connection_id", ev.ConnectionID(),
			"channel", channel,
			"error", err,
		)
	}

	d.logger.Debug("connection established",
		"connection_id", ev.ConnectionID(),
		"channel", channel,
		"identity_id", identity.ID,
	)
	return event.OK(), nil
}

// disconnect marks the connection as gone. Idempotent: disconnecting an
// unknown or already-disconnected connection still succeeds.
func (d *Dispatcher) disconnect(ctx context.Context, ev *event.InboundEvent) (event.Response, error) {
	if err := d.store.MarkDisconnected(ctx, ev.ConnectionID()); err != nil &&
		!errors.Is(err, connection.ErrConnectionNotFound) {
		d.logger.Error("failed to mark connection disconnected",
			"connection_id", ev.ConnectionID(),
			"error", err,
		)
	}

	d.logger.Debug("connection disconnected", "connection_id", ev.ConnectionID())
	return event.OK(), nil
}
