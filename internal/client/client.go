// Package client talks to the text-adventure HTTP API. It holds no session
// state; every call is a single blocking request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/text-adventure-client/internal/logger"
	"github.com/jwebster45206/text-adventure-client/pkg/protocol"
	"github.com/tidwall/gjson"
)

const maxResponseBytes = 4 << 20

// TransportError covers everything that stops a call from producing a usable
// response: network failures, unreadable or non-JSON bodies and error
// statuses. The session is untouched, so the same command can be retried.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int // 0 when no response arrived
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ScreenStore keeps fetched screens so repeated lookups skip the network.
type ScreenStore interface {
	GetScreen(ctx context.Context, id string) (protocol.Screen, bool, error)
	PutScreen(ctx context.Context, screen protocol.Screen) error
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	screens ScreenStore
}

func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}
}

// WithScreenStore makes FetchScreen read through store.
func (c *Client) WithScreenStore(store ScreenStore) *Client {
	c.screens = store
	return c
}

// FetchScreen loads a screen by id with GET <base>/screen/{id}.
func (c *Client) FetchScreen(ctx context.Context, id string) (protocol.Screen, error) {
	if c.screens != nil {
		screen, ok, err := c.screens.GetScreen(ctx, id)
		switch {
		case err != nil:
			c.logger.Warn("Screen store lookup failed", "screen_id", id, "error", err)
		case ok:
			c.logger.Debug("Screen served from store", "screen_id", id)
			return screen, nil
		}
	}

	const op = "fetch screen"
	endpoint := c.baseURL + "/screen/" + url.PathEscape(id)

	body, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return protocol.Screen{}, &TransportError{Op: op, URL: endpoint, StatusCode: status, Err: err}
	}
	if status != http.StatusOK {
		return protocol.Screen{}, &TransportError{Op: op, URL: endpoint, StatusCode: status, Err: apiError(body)}
	}

	screen, err := protocol.ParseScreen(body)
	if err != nil {
		return protocol.Screen{}, &TransportError{
			Op:         op,
			URL:        endpoint,
			StatusCode: status,
			Err:        fmt.Errorf("failed to parse screen response: %w", err),
		}
	}

	if c.screens != nil {
		if err := c.screens.PutScreen(ctx, screen); err != nil {
			c.logger.Warn("Screen store write failed", "screen_id", id, "error", err)
		}
	}
	return screen, nil
}

// SubmitCommand posts req to <base>/command and returns the raw response
// object, still unclassified. Error statuses whose body is a JSON object
// without an "error" field are returned too, since the server reports
// rejected commands in-band.
func (c *Client) SubmitCommand(ctx context.Context, req protocol.CommandRequest) ([]byte, error) {
	const op = "submit command"
	endpoint := c.baseURL + "/command"

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Op: op, URL: endpoint, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	body, status, err := c.do(ctx, http.MethodPost, endpoint, jsonData)
	if err != nil {
		return nil, &TransportError{Op: op, URL: endpoint, StatusCode: status, Err: err}
	}

	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		if status/100 != 2 {
			return nil, &TransportError{Op: op, URL: endpoint, StatusCode: status, Err: apiError(body)}
		}
		return nil, &TransportError{Op: op, URL: endpoint, StatusCode: status, Err: errors.New("response is not a JSON object")}
	}

	if status/100 != 2 {
		var errorResp protocol.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
			return nil, &TransportError{Op: op, URL: endpoint, StatusCode: status, Err: errors.New(errorResp.Error)}
		}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, int, error) {
	requestID := uuid.NewString()
	log := logger.WithRequestID(c.logger, requestID)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("API request failed", "method", method, "url", endpoint, "error", err)
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug("API request completed",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))
	return body, resp.StatusCode, nil
}

// apiError extracts the server's error message, falling back to the raw body.
func apiError(body []byte) error {
	var errorResp protocol.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
		return errors.New(errorResp.Error)
	}
	const limit = 200
	if len(body) > limit {
		body = body[:limit]
	}
	return fmt.Errorf("unexpected response: %q", string(body))
}
