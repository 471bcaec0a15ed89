// Package middleware provides reusable HTTP middleware for query ids,
// Prometheus metrics, and request timeouts.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/kotoba-dict/kotoba/pkg/logger"
)

const headerQueryID = "X-Query-Id"

// QueryID assigns each request an id (taken from the X-Query-Id header when
// present) and stores it in the request context for log correlation.
func QueryID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerQueryID)
		if id == "" {
			id = newID()
		}
		ctx := logger.WithQueryID(r.Context(), id)
		w.Header().Set(headerQueryID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}
