package service

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/sockgate/sockgate/internal/adapter/outbound/memory"
	"github.com/sockgate/sockgate/internal/config"
	"github.com/sockgate/sockgate/internal/domain/dispatch"
	"github.com/sockgate/sockgate/internal/domain/event"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Gateway.ExpectedGatewayID = "G1"
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullHeaders() event.Headers {
	return event.NewHeaders(map[string]string{
		"Host":                     "a.com",
		"X-Real-Ip":                "10.0.0.1",
		"X-Forwarded-For":          "10.0.0.1",
		"X-Forwarded-Proto":        "https",
		"Connection":               "keep-alive",
		"Content-Length":           "0",
		"X-Forwarded-Port":         "443",
		"X-Amzn-Trace-Id":          "Root=1-abc",
		"Connectionid":             "conn-1",
		"User-Agent":               "AmazonAPIGateway_G1",
		"X-Amzn-Apigateway-Api-Id": "G1",
	})
}

func connectHeaders() event.Headers {
	h := fullHeaders()
	h.Set("Cookie", "session=x")
	h.Set("Origin", "https://a.com")
	h.Set("Sec-Websocket-Extensions", "permessage-deflate")
	h.Set("Sec-Websocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	h.Set("Sec-Websocket-Version", "13")
	return h
}

// The service wires the full lifecycle from configuration: connect,
// message dispatch, disconnect.
func TestGatewayServiceLifecycle(t *testing.T) {
	store := memory.NewConnectionStore()
	svc := NewGatewayService(testConfig(), store, quietLogger())
	ctx := context.Background()

	if err := svc.RegisterHandler("ping", func(ctx context.Context, ev *event.InboundEvent) (event.Response, error) {
		return event.OKBody(map[string]any{"message": "pong"}), nil
	}); err != nil {
		t.Fatalf("RegisterHandler() error = %v", err)
	}

	connect, err := event.New("POST", event.SlugConnect, connectHeaders(),
		url.Values{"channel": []string{"chat"}}, nil)
	if err != nil {
		t.Fatalf("event.New() error = %v", err)
	}
	resp, err := svc.Dispatch(ctx, connect)
	if err != nil || !resp.IsSuccess() {
		t.Fatalf("connect = %v, %v, want Success", resp.Status(), err)
	}

	conn, ok := store.Get("conn-1")
	if !ok || !conn.Connected || conn.Channel != "chat" {
		t.Fatalf("stored connection = %+v (found=%v), want connected on chat", conn, ok)
	}

	message, err := event.New("POST", "message", fullHeaders(), nil, []byte(`{"action":"ping"}`))
	if err != nil {
		t.Fatalf("event.New() error = %v", err)
	}
	resp, err = svc.Dispatch(ctx, message)
	if err != nil || resp.Body()["message"] != "pong" {
		t.Fatalf("message = %v, %v, want pong", resp.Body(), err)
	}

	disconnect, err := event.New("POST", event.SlugDisconnect, fullHeaders(), nil, nil)
	if err != nil {
		t.Fatalf("event.New() error = %v", err)
	}
	resp, err = svc.Dispatch(ctx, disconnect)
	if err != nil || !resp.IsSuccess() {
		t.Fatalf("disconnect = %v, %v, want Success", resp.Status(), err)
	}
	if conn, _ := store.Get("conn-1"); conn.Connected {
		t.Error("connection still marked connected after disconnect")
	}
}

// Configuration overrides flow through to the dispatcher.
func TestGatewayServiceConfigOverrides(t *testing.T) {
	cfg := testConfig()
	cfg.Gateway.RouteSelectionKey = "route"
	cfg.Gateway.Methods = []string{"POST"}
	cfg.Gateway.AllowedHosts = []string{"b.com"}

	svc := NewGatewayService(cfg, memory.NewConnectionStore(), quietLogger())
	ctx := context.Background()

	// The configured verb set rejects GET.
	ev, _ := event.New("GET", "message", fullHeaders(), nil, []byte(`{"route":"x"}`))
	resp, err := svc.Dispatch(ctx, ev)
	if err != nil || resp.Status() != event.StatusMethodNotAllowed {
		t.Errorf("GET dispatch = %v, %v, want MethodNotAllowed", resp.Status(), err)
	}

	// The configured route key is consulted instead of the default.
	ev, _ = event.New("POST", "message", fullHeaders(), nil, []byte(`{"action":"x"}`))
	resp, err = svc.Dispatch(ctx, ev)
	if err != nil || resp.Status() != event.StatusBadRequest {
		t.Errorf("dispatch without route key = %v, %v, want BadRequest", resp.Status(), err)
	}

	// The configured allow-list rejects the connect host.
	ev, _ = event.New("POST", event.SlugConnect, connectHeaders(), nil, nil)
	resp, err = svc.Dispatch(ctx, ev)
	if err != nil || resp.Status() != event.StatusBadRequest {
		t.Errorf("connect with disallowed host = %v, %v, want BadRequest", resp.Status(), err)
	}
}

func TestGatewayServiceUnregisteredRoute(t *testing.T) {
	svc := NewGatewayService(testConfig(), memory.NewConnectionStore(), quietLogger())

	ev, _ := event.New("POST", "message", fullHeaders(), nil, []byte(`{"action":"nope"}`))
	_, err := svc.Dispatch(context.Background(), ev)
	if err == nil {
		t.Fatal("Dispatch() error = nil for unregistered route, want NotImplementedRoute")
	}
	derr, ok := err.(*dispatch.Error)
	if !ok || derr.Kind != dispatch.KindNotImplementedRoute {
		t.Errorf("Dispatch() error = %v, want KindNotImplementedRoute", err)
	}
}
