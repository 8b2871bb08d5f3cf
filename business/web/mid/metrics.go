package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/forkchain/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forkchain",
		Subsystem: "web",
		Name:      "requests_total",
		Help:      "Number of requests handled.",
	})

	failures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forkchain",
		Subsystem: "web",
		Name:      "errors_total",
		Help:      "Number of requests that returned an error.",
	})

	panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forkchain",
		Subsystem: "web",
		Name:      "panics_total",
		Help:      "Number of requests that panicked.",
	})
)

// Metrics updates program counters.
func Metrics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)

			requests.Inc()
			if err != nil {
				failures.Inc()
			}

			return err
		}

		return h
	}

	return m
}
