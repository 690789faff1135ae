// Package linguachat provides a Go client for the linguachat server: REST
// authentication, history and submission, plus a reconciling live feed
// that merges the history snapshot with websocket events without
// duplicating or dropping messages.
package linguachat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Message is a chat message as the server serializes it.
type Message struct {
	ID          int64  `json:"id"`
	RoomID      string `json:"room_id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Kind        string `json:"kind"`
	Content     string `json:"content,omitempty"`
	AudioURL    string `json:"audio_url,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// RoomID derives the canonical room identifier for two participants,
// mirroring the server's derivation.
func RoomID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// Client is a linguachat API client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a client for the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type authResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login authenticates and stores the session token on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp authResponse
	err := c.post(ctx, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	c.Token = resp.Token
	return nil
}

// Register creates an account and stores the session token on the client.
func (c *Client) Register(ctx context.Context, username, password, preferredLanguage string) error {
	var resp authResponse
	err := c.post(ctx, "/api/register", map[string]string{
		"username":           username,
		"password":           password,
		"preferred_language": preferredLanguage,
	}, &resp)
	if err != nil {
		return err
	}
	c.Token = resp.Token
	return nil
}

type historyResponse struct {
	RoomID   string    `json:"room_id"`
	Messages []Message `json:"messages"`
}

// Messages fetches the full history of the room with peer.
func (c *Client) Messages(ctx context.Context, peer string) ([]Message, error) {
	var resp historyResponse
	if err := c.get(ctx, "/api/rooms/"+url.PathEscape(peer)+"/messages", &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Send submits a text message to peer and returns the persisted record.
func (c *Client) Send(ctx context.Context, peer, content string) (*Message, error) {
	var msg Message
	err := c.post(ctx, "/api/rooms/"+url.PathEscape(peer)+"/messages", map[string]string{
		"kind":    "text",
		"content": content,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Listen opens the room with peer and runs the reconciliation protocol:
// fetch history, subscribe to the live feed, and invoke handler exactly
// once per distinct message (history first, then deduplicated live
// events). It blocks until ctx is done or the feed drops; the returned
// error is nil on a clean close. Callers re-run Listen to recover from a
// dropped feed, which re-fetches history and closes any delivery gap.
func (c *Client) Listen(ctx context.Context, peer string, handler func(Message)) error {
	wsURL, err := c.feedURL(peer)
	if err != nil {
		return err
	}

	// Subscribe first, then fetch history: a message ingested in between
	// arrives on both paths and is collapsed by the timeline, whereas the
	// reverse order can lose it entirely.
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.Token}},
	})
	if err != nil {
		return fmt.Errorf("dial live feed: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "leaving room")

	history, err := c.Messages(ctx, peer)
	if err != nil {
		return err
	}

	timeline := NewTimeline()
	for _, msg := range history {
		if timeline.Apply(msg) {
			handler(msg)
		}
	}

	for {
		var frame outbound
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return fmt.Errorf("read live feed: %w", err)
		}
		if frame.Type != "event" || frame.Event != "new-message" {
			continue
		}
		var msg Message
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			return fmt.Errorf("decode live event: %w", err)
		}
		if timeline.Apply(msg) {
			handler(msg)
		}
	}
}

func (c *Client) feedURL(peer string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/rooms/" + url.PathEscape(peer)
	return u.String(), nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", req.Method, req.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
