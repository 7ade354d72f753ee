package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sockgate/sockgate/internal/domain/dispatch"
	"github.com/sockgate/sockgate/internal/domain/event"
)

// maxBodyBytes bounds the request body the transport will read. Managed
// gateways cap WebSocket frames well below this.
const maxBodyBytes = 1 << 20

// eventFromRequest converts an incoming HTTP request into an InboundEvent.
// The slug is the path segment after basePath; the body is decoded once by
// the event constructor.
func eventFromRequest(r *http.Request, basePath string) (*event.InboundEvent, error) {
	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, basePath), "/")
	if slug == "" {
		return nil, errors.New("missing route slug")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}

	headers := event.Headers{}
	for name, values := range r.Header {
		headers.Set(name, strings.Join(values, ", "))
	}
	// net/http promotes the Host header onto the request; fold it back in
	// so the header contract sees it.
	if r.Host != "" {
		headers.Set("Host", r.Host)
	}

	return event.New(r.Method, slug, headers, r.URL.Query(), body)
}

// writeResponse renders a dispatch Response: JSON with 200 for Success,
// plain text with 400 or 405 for rejections.
func writeResponse(w http.ResponseWriter, resp event.Response) {
	switch resp.Status() {
	case event.StatusOK:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp.Body())
	case event.StatusMethodNotAllowed:
		http.Error(w, resp.Message(), http.StatusMethodNotAllowed)
	default:
		http.Error(w, resp.Message(), http.StatusBadRequest)
	}
}

// writeDispatchError renders a dispatch failure. An unregistered route is a
// deployment configuration error and maps to 501; anything else is a 500
// with no internal detail leaked.
func writeDispatchError(w http.ResponseWriter, err error) (outcome string) {
	var derr *dispatch.Error
	if errors.As(err, &derr) && derr.Kind == dispatch.KindNotImplementedRoute {
		http.Error(w, derr.Message, http.StatusNotImplemented)
		return "not_implemented"
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
	return "error"
}
