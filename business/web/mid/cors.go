package mid

import (
	"context"
	"net/http"
	"slices"

	"github.com/ardanlabs/forkchain/foundation/web"
)

// Cors sets the Cross-Origin Resource Sharing headers for requests coming
// from one of the allowed origins. A "*" entry allows every origin. The
// node api is read with GET and written with POST only.
func Cors(origins ...string) web.Middleware {
	all := slices.Contains(origins, "*")

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			origin := r.Header.Get("Origin")

			switch {
			case all:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			default:
				return handler(ctx, w, r)
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")
			w.Header().Set("Access-Control-Max-Age", "86400")

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
