package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type changeMessage struct {
	Type    string `json:"type"`
	BoardID string `json:"boardId"`
}

const handshakeTimeout = 10 * time.Second

// Subscribe opens the board change feed. The returned channel receives a
// value after each committed change to the board and is closed when ctx ends
// or the connection drops. Bursts collapse into a single pending wakeup.
func (c *Client) Subscribe(ctx context.Context, boardID string) (<-chan struct{}, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/boards/" + url.PathEscape(boardID) + "/ws"

	hdr := http.Header{}
	if c.ActorID != "" {
		hdr.Set(ActorHeader, c.ActorID)
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), hdr)
	if err != nil {
		if resp != nil {
			return nil, StatusError{Code: resp.StatusCode, Message: err.Error()}
		}
		return nil, err
	}

	var first changeMessage
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	if err := conn.ReadJSON(&first); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if first.Type != "ready" {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected first message %q", first.Type)
	}
	_ = conn.SetReadDeadline(time.Time{})

	out := make(chan struct{}, 1)
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		for {
			var msg changeMessage
			if err := conn.ReadJSON(&msg); err != nil {
				_ = conn.Close()
				return
			}
			if msg.Type != "board.changed" {
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}
