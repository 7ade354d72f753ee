package event

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a stable hex digest of the event's method, slug and
// connection id. Rejection logs carry it as a correlation field so repeated
// failures from the same connection can be grouped without dumping the full
// header map.
func Fingerprint(e *InboundEvent) string {
	h := xxhash.New()
	_, _ = h.WriteString(e.Method())
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(e.Slug())
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(e.ConnectionID())
	return fmt.Sprintf("%016x", h.Sum64())
}
