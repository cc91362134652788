package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/server" // Reuse message types
)

// APIError is an error response from the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client talks to a running server over its HTTP command API and follows
// state changes over the websocket.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, logger *log.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.WithPrefix("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs an operator command and returns the raw JSON result
func (c *Client) Execute(ctx context.Context, name string, args any) (json.RawMessage, error) {
	var body io.Reader = http.NoBody
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode arguments: %w", err)
		}
		body = bytes.NewReader(data)
	}

	c.logger.Debug("Executing command", "command", name)
	return c.do(ctx, http.MethodPost, "/api/commands/"+url.PathEscape(name), body)
}

// GameState fetches the current game. It returns nil when no game runs.
func (c *Client) GameState(ctx context.Context) (*game.Snapshot, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/gamestate", http.NoBody)
	if err != nil {
		return nil, err
	}
	var snap *game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}
	return snap, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body server.ErrorData
		if json.Unmarshal(data, &body) == nil && body.Code != "" {
			apiErr.Code = body.Code
			apiErr.Message = body.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return nil, apiErr
	}
	return data, nil
}

// Watch connects to the websocket and delivers every server message until
// ctx is done or the connection drops. The channel is closed afterwards.
func (c *Client) Watch(ctx context.Context) (<-chan *server.Message, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c.logger.Info("Watching server", "url", u.String())

	messages := make(chan *server.Message, 64)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(messages)
		for {
			var msg server.Message
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil {
					c.logger.Warn("Connection lost", "error", err)
				}
				return
			}
			select {
			case messages <- &msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return messages, nil
}
