package validation

import (
	"strings"
	"testing"

	"github.com/sockgate/sockgate/internal/domain/event"
)

// eventWithHeaders builds an event carrying exactly the given header names.
func eventWithHeaders(t *testing.T, names []string) *event.InboundEvent {
	t.Helper()
	headers := event.Headers{}
	for _, name := range names {
		headers.Set(name, "x")
	}
	ev, err := event.New("POST", "message", headers, nil, nil)
	if err != nil {
		t.Fatalf("event.New() error = %v", err)
	}
	return ev
}

func TestHasRequiredHeadersAllPresent(t *testing.T) {
	v := NewHeaderValidator(nil, nil)
	ev := eventWithHeaders(t, DefaultRequiredHeaders)
	if !v.HasRequiredHeaders(ev) {
		t.Error("HasRequiredHeaders() = false with full header set, want true")
	}
}

// Every single missing required header must fail the check.
func TestHasRequiredHeadersEachMissing(t *testing.T) {
	v := NewHeaderValidator(nil, nil)

	for _, missing := range DefaultRequiredHeaders {
		t.Run("missing "+missing, func(t *testing.T) {
			names := make([]string, 0, len(DefaultRequiredHeaders)-1)
			for _, name := range DefaultRequiredHeaders {
				if name != missing {
					names = append(names, name)
				}
			}
			ev := eventWithHeaders(t, names)
			if v.HasRequiredHeaders(ev) {
				t.Errorf("HasRequiredHeaders() = true with %s missing, want false", missing)
			}
		})
	}
}

// Proxies vary header casing; presence checks must not.
func TestHasRequiredHeadersCaseInsensitive(t *testing.T) {
	v := NewHeaderValidator(nil, nil)
	headers := event.Headers{}
	for _, name := range DefaultRequiredHeaders {
		headers.Set(strings.ToLower(name), "x")
	}
	ev, err := event.New("POST", "message", headers, nil, nil)
	if err != nil {
		t.Fatalf("event.New() error = %v", err)
	}
	if !v.HasRequiredHeaders(ev) {
		t.Error("HasRequiredHeaders() = false with lowercased headers, want true")
	}
}

func TestHasRequiredConnectionHeaders(t *testing.T) {
	v := NewHeaderValidator(nil, nil)

	tests := []struct {
		name  string
		names []string
		want  bool
	}{
		{name: "all present", names: DefaultRequiredConnectionHeaders, want: true},
		{name: "empty", names: nil, want: false},
		{
			name:  "missing Sec-Websocket-Key",
			names: []string{"Cookie", "Origin", "Sec-Websocket-Extensions", "Sec-Websocket-Version"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := eventWithHeaders(t, tt.names)
			if got := v.HasRequiredConnectionHeaders(ev); got != tt.want {
				t.Errorf("HasRequiredConnectionHeaders() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCustomRequiredSet(t *testing.T) {
	v := NewHeaderValidator([]string{"Host", "X-Custom"}, nil)

	ev := eventWithHeaders(t, []string{"Host", "X-Custom"})
	if !v.HasRequiredHeaders(ev) {
		t.Error("HasRequiredHeaders() = false with custom set present, want true")
	}

	ev = eventWithHeaders(t, []string{"Host"})
	if v.HasRequiredHeaders(ev) {
		t.Error("HasRequiredHeaders() = true with custom header missing, want false")
	}
}

// The validator must copy its inputs; mutating the caller's slice after
// construction must not change behavior.
func TestValidatorCopiesInputs(t *testing.T) {
	required := []string{"Host", "X-Custom"}
	v := NewHeaderValidator(required, nil)
	required[1] = "X-Other"

	ev := eventWithHeaders(t, []string{"Host", "X-Custom"})
	if !v.HasRequiredHeaders(ev) {
		t.Error("validator affected by caller mutation after construction")
	}
}

func TestRequiredReturnsCopy(t *testing.T) {
	v := NewHeaderValidator(nil, nil)
	got := v.Required()
	got[0] = "Mutated"
	if v.Required()[0] == "Mutated" {
		t.Error("Required() returned a mutable reference to internal state")
	}
}
