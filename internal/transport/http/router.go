// Package httptransport assembles the public HTTP surface: middleware chain,
// versioned API routes, health, and metrics.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	checkinhandler "trustgate/internal/checkin/handler"
	"trustgate/internal/device"
	noshowhandler "trustgate/internal/noshow/handler"
	rewardhandler "trustgate/internal/reward/handler"
	scannerhandler "trustgate/internal/scanner/handler"
	tokenhandler "trustgate/internal/token/handler"
	verificationhandler "trustgate/internal/verification/handler"
	"trustgate/pkg/platform/httputil"
	"trustgate/pkg/platform/middleware/metadata"
	"trustgate/pkg/platform/middleware/requestid"
	"trustgate/pkg/platform/middleware/requesttime"
	"trustgate/pkg/requestcontext"
)

// Handlers collects the feature handlers mounted under /v1.
type Handlers struct {
	Checkin      *checkinhandler.Handler
	Tokens       *tokenhandler.Handler
	Verification *verificationhandler.Handler
	NoShow       *noshowhandler.Handler
	Rewards      *rewardhandler.Handler
	Scanners     *scannerhandler.Handler
}

// NewRouter builds the full router. The fingerprinter turns the User-Agent
// into a device hash for callers that cannot compute one client-side.
func NewRouter(h Handlers, fp *device.Fingerprinter) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(fingerprintMiddleware(fp))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		h.Checkin.Register(r)
		h.Tokens.Register(r)
		h.Verification.Register(r)
		h.NoShow.Register(r)
		h.Rewards.Register(r)
		h.Scanners.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fingerprintMiddleware derives a device hash from the User-Agent captured by
// the metadata middleware and stores it for handlers to fall back on.
func fingerprintMiddleware(fp *device.Fingerprinter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if ua := requestcontext.UserAgent(ctx); ua != "" {
				if hash := fp.Compute(ua); hash != "" {
					ctx = requestcontext.WithDeviceFingerprint(ctx, hash)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
