// Package api wraps the storefront REST transport: bearer auth, envelope
// unwrapping, and a single normalized error shape for all failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RequestTimeout bounds every call; a timeout fails like any other
// network error and is never retried.
const RequestTimeout = 10 * time.Second

const fallbackMessage = "something went wrong"

// Error is the one shape every failure normalizes into. Message is
// display-ready, preferring the server-supplied message over the transport
// error over a generic fallback.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// TokenSource yields the current bearer token, or "" when unauthenticated.
// The session store satisfies this.
type TokenSource interface {
	Token() string
}

// envelope is the transport wrapper every endpoint responds with. Success is
// a pointer so a body without the field is not mistaken for success=false.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Count   int             `json:"count,omitempty"`
}

// Client is the storefront HTTP client. All methods decode the envelope and
// hand callers the data field, or the whole body when data is absent.
type Client struct {
	rc     *resty.Client
	log    *zap.Logger
	tokens TokenSource
}

// New builds a client against baseURL. tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{log: log, tokens: tokens}
	c.rc = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(RequestTimeout).
		SetHeader("Content-Type", "application/json")
	c.rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.tokens != nil {
			if tok := c.tokens.Token(); tok != "" {
				req.SetAuthToken(tok)
			}
		}
		return nil
	})
	return c
}

// Get issues a GET and decodes the envelope data into out (out may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UploadFile posts content as a multipart file field and decodes the
// response like any other call. Used by the product image upload.
func (c *Client) UploadFile(ctx context.Context, path, field, filename string, content []byte, out any) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetFileReader(field, filename, bytes.NewReader(content)).
		Post(path)
	if err != nil {
		return c.transportError(path, err)
	}
	return c.decode(resp, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return c.transportError(path, err)
	}
	return c.decode(resp, out)
}

// transportError covers timeouts and connectivity: no response was received.
func (c *Client) transportError(path string, err error) error {
	c.log.Warn("request failed", zap.String("path", path), zap.Error(err))
	msg := err.Error()
	if msg == "" {
		msg = fallbackMessage
	}
	return &Error{Message: msg}
}

// decode unwraps the response envelope. A non-2xx status or success=false
// both normalize into *Error with the best available message.
func (c *Client) decode(resp *resty.Response, out any) error {
	raw := resp.Body()
	var env envelope
	envOK := json.Unmarshal(raw, &env) == nil

	if resp.IsError() || (envOK && env.Success != nil && !*env.Success) {
		msg := fallbackMessage
		switch {
		case envOK && env.Message != "":
			msg = env.Message
		case resp.Status() != "":
			msg = resp.Status()
		}
		c.log.Warn("server error",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", msg),
		)
		return &Error{Status: resp.StatusCode(), Message: msg}
	}
	if out == nil {
		return nil
	}
	if envOK && len(env.Data) > 0 && string(env.Data) != "null" {
		return json.Unmarshal(env.Data, out)
	}
	// no data field: hand the caller the whole body
	return json.Unmarshal(raw, out)
}
