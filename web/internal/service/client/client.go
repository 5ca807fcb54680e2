package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Astemirdum/library-web/pkg/circuit_breaker"
	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client talks JSON to the backend REST API. Every call goes through the
// circuit breaker; 4xx answers reach the caller but do not trip it.
type Client struct {
	log     *zap.Logger
	client  *http.Client
	baseURL string
	cb      circuit_breaker.CircuitBreaker
}

func New(log *zap.Logger, cfg config.Backend) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Client{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cb:      circuit_breaker.New(100, time.Second, 0.2, 2),
	}
}

// Do sends in as JSON (when not nil) and decodes the answer into out (when not nil).
// The session token found in ctx is forwarded as a bearer token.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) (int, error) {
	statusCode := http.StatusServiceUnavailable
	err := c.cb.Call(func() error {
		code, err := c.do(ctx, method, path, query, in, out)
		statusCode = code
		if err != nil && code >= 400 && code < 500 {
			return circuit_breaker.Ignored{Err: err}
		}
		return err
	})
	if errors.Is(err, circuit_breaker.ErrOpenCB) {
		return http.StatusServiceUnavailable, err
	}
	return statusCode, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) (int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader = http.NoBody
	if in != nil {
		b := bytes.NewBuffer(nil)
		if err := json.NewEncoder(b).Encode(in); err != nil {
			return http.StatusBadRequest, err
		}
		body = b
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return http.StatusBadRequest, err
	}
	if in != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	if token := session.TokenFrom(ctx); token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return http.StatusRequestTimeout, ctx.Err()
		}
		c.log.Warn("backend unavailable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return http.StatusServiceUnavailable, errors.Wrap(err, "backend unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		d, _ := io.ReadAll(resp.Body) //nolint:errcheck
		return resp.StatusCode, &errs.StatusError{Code: resp.StatusCode, Message: message(d)}
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return http.StatusBadGateway, errors.Wrap(err, "decode backend response")
	}
	return resp.StatusCode, nil
}

// message extracts a human readable reason from an error body.
func message(body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &m); err == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Error != "" {
			return m.Error
		}
	}
	return strings.TrimSpace(string(body))
}
