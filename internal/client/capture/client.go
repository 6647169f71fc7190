// Package capture is the client side of the capture API.
//
// One Submit is one JSON POST; there are no retries. Anything other than a
// decodable 2xx response is a transport failure, so the caller only has to
// tell three outcomes apart: success, server-reported failure, transport
// failure.
package capture

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

	"github.com/sakif/ui-feedback/internal/apperror"
)

// maxResponseBytes caps how much of a response body we read.
const maxResponseBytes = 1 << 20

// Response is the capture endpoint's JSON envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// User is one entry of the operator listing.
type User struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client talks to the capture API at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client. A non-positive timeout falls back to 10s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Submit posts {"email": email} to the capture endpoint.
//
// The returned error is always an apperror.Transport when non-nil: the
// request failed, the status was not 2xx, or the body was not JSON. A 2xx
// with success=false is returned as a Response, not an error.
func (c *Client) Submit(ctx context.Context, email string) (*Response, error) {
	var out Response
	if err := c.do(ctx, http.MethodPost, "/", "", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers fetches the operator listing with a bearer token.
// A 401 is reported as apperror.ErrUnauthorized.
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var out struct {
		Success bool   `json:"success"`
		Data    []User `json:"data"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &out); err != nil {
		if StatusCode(err) == http.StatusUnauthorized {
			return nil, apperror.Unauthorized(statusBody(err, "operator token rejected"))
		}
		return nil, err
	}
	if !out.Success {
		return nil, apperror.Server(out.Error)
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return apperror.Transport(fmt.Errorf("create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return apperror.Transport(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperror.Transport(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperror.Transport(&StatusError{Code: resp.StatusCode, Body: errorText(respBody, "")})
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return apperror.Transport(fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}

// StatusError is a non-2xx reply. It sits inside an apperror.Transport.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func statusBody(err error, def string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Body != "" {
		return se.Body
	}
	return def
}

// errorText pulls "error" out of a JSON envelope, falling back to def.
func errorText(body []byte, def string) string {
	var env Response
	if json.Unmarshal(body, &env) == nil && env.Error != "" {
		return env.Error
	}
	return def
}
