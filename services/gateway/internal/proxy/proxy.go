package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bigode/bigode-booking/pkg/logger"
)

// ServiceProxy forwards requests to one upstream service.
type ServiceProxy struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewServiceProxy(name, baseURL string) *ServiceProxy {
	return &ServiceProxy{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *ServiceProxy) Name() string {
	return p.name
}

// Do sends method+path upstream with the given body and headers. The caller
// closes the response body.
func (p *ServiceProxy) Do(ctx context.Context, method, path string, body io.Reader, headers http.Header) (*http.Response, error) {
	url := p.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	req.Header.Set("X-Gateway-Forwarded", "true")

	logger.DebugContext(ctx, "Proxying request", "service", p.name, "method", method, "url", url)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", p.name, err)
	}
	return resp, nil
}

// Healthy reports whether the upstream answers its health endpoint with 200.
func (p *ServiceProxy) Healthy(ctx context.Context) error {
	resp, err := p.Do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s health returned %d", p.name, resp.StatusCode)
	}
	return nil
}
