package common

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

// ServeMetrics exposes the gatherer on /metrics at the given port and returns a function that shuts the server down.
func ServeMetrics(port uint16, gatherer prometheus.Gatherer) (shutdown func(), err error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return ServeHttp(port, mux)
}

// ServeHttp starts serving the handler in the background. The listener is bound before returning so that a port
// conflict is reported to the caller rather than only logged.
func ServeHttp(port uint16, handler http.Handler) (shutdown func(), err error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, errors.Wrapf(err, "listening on port %d", port)
	}
	srv := &http.Server{Handler: handler}

	go func() {
		logging.Infof("Starting http server listening on %d", port)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.WithError(err).Error("http server stopped unexpectedly")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Infof("Stopping http server listening on %d", port)
		if err := srv.Shutdown(ctx); err != nil {
			logging.WithError(err).Warn("http server did not shut down cleanly")
		}
	}, nil
}
