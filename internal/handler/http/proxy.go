package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"microsite-gateway/internal/correlation"
	"microsite-gateway/internal/handler/http/respond"
	"microsite-gateway/internal/observability/metrics"
)

// NewUpstreamProxy builds the reverse proxy that forwards gatekept requests
// to the upstream application. The pipeline has already rewritten the URL
// and injected identity headers by the time a request reaches the proxy.
//
// Proxy errors never leak upstream details to clients: the handler responds
// 502 with a generic body and logs the cause with the correlation ID.
func NewUpstreamProxy(target *url.URL, logger *slog.Logger) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)

	proxy.Transport = &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	proxy.ModifyResponse = func(resp *http.Response) error {
		metrics.UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		return nil
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		metrics.UpstreamErrors.Inc()
		logger.Error("upstream proxy error",
			slog.String("correlation_id", correlation.FromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		respond.SafeError(w, http.StatusBadGateway, fmt.Errorf("upstream unavailable"))
	}

	return proxy
}
