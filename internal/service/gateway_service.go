// Package service composes the domain components into the running gateway.
package service

import (
	"context"
	"log/slog"

	"github.com/sockgate/sockgate/internal/config"
	"github.com/sockgate/sockgate/internal/domain/connection"
	"github.com/sockgate/sockgate/internal/domain/dispatch"
	"github.com/sockgate/sockgate/internal/domain/event"
	"github.com/sockgate/sockgate/internal/domain/gate"
	"github.com/sockgate/sockgate/internal/domain/validation"
)

// GatewayService wires the header validator, security gate, dispatcher and
// connection store from configuration. Deployments register their message
// handlers on it before serving; after that it is read-only and safe for
// concurrent dispatch.
type GatewayService struct {
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewGatewayService builds the service from validated configuration.
func NewGatewayService(cfg *config.Config, store connection.Store, logger *slog.Logger) *GatewayService {
	if logger == nil {
		logger = slog.Default()
	}

	headers := validation.NewHeaderValidator(
		cfg.Gateway.RequiredHeaders,
		cfg.Gateway.RequiredConnectionHeaders,
	)
	securityGate := gate.New(gate.IdentityConfig{
		GatewayID:       cfg.Gateway.ExpectedGatewayID,
		UserAgentPrefix: cfg.Gateway.ExpectedUserAgentPrefix,
	}, cfg.Gateway.AllowedHosts, logger)

	dispatcher := dispatch.New(dispatch.Config{
		Headers:           headers,
		Gate:              securityGate,
		Store:             store,
		RouteSelectionKey: cfg.Gateway.RouteSelectionKey,
		Methods:           cfg.Gateway.Methods,
		Logger:            logger,
	})

	return &GatewayService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandler adds a message handler for a route key. Must be called
// before the transport starts serving.
func (s *GatewayService) RegisterHandler(key string, h dispatch.Handler) error {
	return s.dispatcher.Register(key, h)
}

// Dispatch routes one inbound event.
func (s *GatewayService) Dispatch(ctx context.Context, ev *event.InboundEvent) (event.Response, error) {
	return s.dispatcher.Dispatch(ctx, ev)
}
