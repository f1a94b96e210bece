package id

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Fingerprint hashes the given parts into a 16-char hex string. Parts are
// separated so ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) string {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			d.Write([]byte{0}) //nolint:errcheck
		}
		d.WriteString(p) //nolint:errcheck
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// RequestID returns a random identifier for an inbound request.
func RequestID() string {
	return uuid.NewString()
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying rid.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestIDFrom returns the request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	rid, ok := ctx.Value(requestIDKey{}).(string)
	return rid, ok && rid != ""
}
