package ids

import "github.com/oklog/ulid/v2"

// NewRequestID returns a lexicographically sortable identifier attached
// to every outgoing backend call for correlation in diagnostics.
func NewRequestID() string {
	return ulid.Make().String()
}
