// Package watch subscribes to the backend's pipeline progress stream so
// long-running stages (input processing, document builds) can be followed
// from a second terminal.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"prdpilot/pkg/events"
)

const (
	handshakeTimeout = 5 * time.Second
	pingInterval     = 30 * time.Second
	writeTimeout     = 10 * time.Second
)

// Client holds one WebSocket subscription for a project.
type Client struct {
	wsURL   string
	onEvent func(events.Event)

	mu     sync.Mutex
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient prepares a subscription against the backend's event endpoint.
// serverURL is the same base URL the HTTP client uses.
func NewClient(serverURL, projectID string, onEvent func(events.Event)) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/events"
	u.RawQuery = "project_id=" + url.QueryEscape(projectID)

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		wsURL:   u.String(),
		onEvent: onEvent,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Connect dials the event endpoint and starts the read and ping loops.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return fmt.Errorf("already connected")
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = handshakeTimeout

	conn, _, err := dialer.Dial(c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.wsURL, err)
	}
	c.conn = conn

	c.wg.Add(2)
	go c.readLoop(conn)
	go c.pingLoop(conn)
	return nil
}

// Wait blocks until the connection ends.
func (c *Client) Wait() {
	c.wg.Wait()
}

// Close tears the subscription down.
func (c *Client) Close() error {
	c.cancel()
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		return conn.Close()
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()
	defer c.cancel()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev events.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// Unrecognized frames are skipped, not fatal.
			continue
		}
		if c.onEvent != nil {
			c.onEvent(ev)
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
