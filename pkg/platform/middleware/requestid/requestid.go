// Package requestid assigns each request a correlation identifier, honoring
// one supplied by an upstream proxy.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"trustgate/pkg/requestcontext"
)

// Header is the inbound and outbound correlation header.
const Header = "X-Request-ID"

// Middleware stores the request ID in the context and echoes it on the
// response so clients can quote it in support tickets.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
