package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

const maxBodySize = 4 << 20

var (
	// ErrRejected indicates the user service refused the credentials.
	ErrRejected = errors.New("credentials rejected")
	// ErrAccountLocked indicates the account exists but may not log in.
	ErrAccountLocked = errors.New("account not active")
	// ErrMalformed indicates the user service refused the shape of the
	// credentials.
	ErrMalformed = errors.New("credentials malformed")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// UnreachableError represents a transport failure or timeout.
type UnreachableError struct {
	Service  model.ServiceName
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s service unreachable at %s: %v", e.Service, e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// ServiceError represents a reachable service answering with an application
// error or an undecodable payload.
type ServiceError struct {
	Service    model.ServiceName
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s service error at %s: %s", e.Service, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s service error at %s: status %d: %s", e.Service, e.Endpoint, e.StatusCode, e.Message)
}

// IsDegradation reports whether err means the backing service could not
// serve the call, as opposed to a definitive answer.
func IsDegradation(err error) bool {
	var unreachable *UnreachableError
	var serviceErr *ServiceError
	return errors.As(err, &unreachable) || errors.As(err, &serviceErr)
}

// Client talks to a single backing service over HTTP.
type Client struct {
	service    model.ServiceName
	baseURL    *url.URL
	healthPath string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for service rooted at baseURL. timeout bounds
// every request even when the caller context has no deadline.
func NewClient(service model.ServiceName, baseURL, healthPath string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s service url: %w", service, err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("%s service url must be absolute", service)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		service:    service,
		baseURL:    parsed,
		healthPath: healthPath,
		logger:     logger.With(zap.String("service", string(service))),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Name returns the backing service this client talks to.
func (c *Client) Name() model.ServiceName {
	return c.service
}

// Probe calls the health endpoint; any 2xx answer means healthy.
func (c *Client) Probe(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, c.healthPath, nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &ServiceError{Service: c.service, Endpoint: c.healthPath, StatusCode: status, Message: snippet(body)}
	}
	return nil
}

// Get fetches endpoint and returns the raw JSON body of a 2xx answer.
func (c *Client) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	status, body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
		return body, nil
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", c.service, endpoint, ErrNotFound)
	default:
		c.logger.Error("backing service request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", status),
			zap.String("body", snippet(body)),
		)
		return nil, &ServiceError{Service: c.service, Endpoint: endpoint, StatusCode: status, Message: snippet(body)}
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, payload any) (int, []byte, error) {
	target := *c.baseURL
	target.Path = path.Join(target.Path, endpoint)
	if query != nil {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &UnreachableError{Service: c.service, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, &UnreachableError{Service: c.service, Endpoint: endpoint, Err: err}
	}
	return resp.StatusCode, body, nil
}

func (c *Client) malformed(endpoint string, err error) error {
	c.logger.Error("backing service payload malformed",
		zap.String("endpoint", endpoint),
		zap.Error(err),
	)
	return &ServiceError{Service: c.service, Endpoint: endpoint, Message: err.Error()}
}

func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
