package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

const (
	defaultBaseURL = "http://localhost:3333"
	defaultTimeout = 15 * time.Second

	// SessionHeader identifies one client instance to the queue endpoints.
	SessionHeader = "X-Bigode-Session"
)

// APIError is returned for any non-2xx answer.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("bigode API %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("bigode API %d: %s", e.Status, e.Message)
}

// UserMessage is the server's own wording, suitable for display.
func (e *APIError) UserMessage() string {
	return e.Message
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// TokenSource returns the bearer token to send, or "" for none.
type TokenSource func() string

// Client talks to the Bigode REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sessionID  string
	token      TokenSource
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

func WithSessionID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.sessionID = id
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessionID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID is the value sent in SessionHeader.
func (c *Client) SessionID() string {
	return c.sessionID
}

type request struct {
	method  string
	path    string
	query   any
	body    any
	headers map[string]string
}

func (c *Client) doJSON(ctx context.Context, r request, out any) error {
	endpoint := c.baseURL + r.path
	if r.query != nil {
		values, err := query.Values(r.query)
		if err != nil {
			return fmt.Errorf("encode query: %w", err)
		}
		if encoded := values.Encode(); encoded != "" {
			endpoint += "?" + encoded
		}
	}

	var bodyReader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(SessionHeader, c.sessionID)
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	} else {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	logger.DebugContext(ctx, "Calling Bigode API", "method", r.method, "path", r.path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp.StatusCode, respBody)
		logger.WarnContext(ctx, "Bigode API non-2xx response",
			"status", resp.StatusCode,
			"path", r.path,
			"code", apiErr.Code,
		)
		return apiErr
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 300 {
			msg = msg[:300]
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		apiErr.Message = msg
	}
	return apiErr
}
