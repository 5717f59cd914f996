package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bigode/bigode-booking/internal/http/response"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/bigode/bigode-booking/services/gateway/internal/proxy"
)

// APIPrefix is stripped before requests reach the API service.
const APIPrefix = "/api"

type Handlers struct {
	api      *proxy.ServiceProxy
	upstream []*proxy.ServiceProxy
}

// New takes the API proxy and every upstream whose health /status reports,
// the API included.
func New(api *proxy.ServiceProxy, upstream ...*proxy.ServiceProxy) *Handlers {
	return &Handlers{api: api, upstream: upstream}
}

var hopHeaders = map[string]bool{
	"connection":          true,
	"upgrade":             true,
	"proxy-connection":    true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailers":            true,
	"transfer-encoding":   true,
	"keep-alive":          true,
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if hopHeaders[strings.ToLower(key)] {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

// ForwardAPI relays /api/* to the API service with the prefix removed.
func (h *Handlers) ForwardAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, APIPrefix)
	if path == "" {
		path = "/"
	}
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	headers := http.Header{}
	copyHeaders(headers, r.Header)

	resp, err := h.api.Do(r.Context(), r.Method, path, r.Body, headers)
	if err != nil {
		logger.ErrorContext(r.Context(), "Service proxy error", "error", err, "path", path)
		response.WriteError(w, http.StatusBadGateway, "Serviço indisponível", "SERVICE_UNAVAILABLE")
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.ErrorContext(r.Context(), "Failed to copy response body", "error", err)
	}
}

type serviceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Status checks every upstream concurrently and answers 503 when any is down.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := make([]serviceStatus, len(h.upstream))
	var g errgroup.Group
	for i, p := range h.upstream {
		i, p := i, p
		g.Go(func() error {
			results[i] = serviceStatus{Name: p.Name(), Status: "ok"}
			if err := p.Healthy(ctx); err != nil {
				results[i].Status = "down"
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	for _, s := range results {
		if s.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
	}
	response.WriteJSON(w, code, map[string]any{"services": results})
}
