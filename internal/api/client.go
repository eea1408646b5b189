package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrMalformed marks a response whose body does not match the expected
// envelope.
var ErrMalformed = errors.New("malformed response")

// Error describes a failed API call.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.Path)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client talks to the course platform REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     logrus.FieldLogger
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Token() string {
	return c.token
}

// do sends the request and returns the raw response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return nil, &Error{Method: method, Path: path, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "path": path, "request_id": reqID})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(raw, resp.Status),
		}
	}
	return raw, nil
}

func errorMessage(raw []byte, fallback string) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(raw) > 0 && sonic.Unmarshal(raw, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return fallback
}

func malformed(method, path, format string, args ...any) error {
	return &Error{Method: method, Path: path, Message: fmt.Sprintf(format, args...), Err: ErrMalformed}
}
