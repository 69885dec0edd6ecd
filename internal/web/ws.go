package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ChangeMessage is what board websocket subscribers receive after each committed change.
type ChangeMessage struct {
	Type    string `json:"type"`
	BoardID string `json:"boardId"`
}

const (
	changeTypeBoardChanged = "board.changed"
	changeTypeReady        = "ready"
	wsWriteTimeout         = 10 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Basic same-origin check; non-browser clients send no Origin.
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

// handleBoardWS sends a ChangeMessage per committed change to the board.
// Clients re-fetch the board on each message.
func (s *Server) handleBoardWS(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardId")
	if _, err := s.svc.Board(r.Context(), boardID); err != nil {
		writeError(w, r, err)
		return
	}

	h := s.bc.hubFor(boardKey(boardID))
	ch, cancel := h.subscribe()
	defer cancel()

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		return
	}
	defer conn.Close()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	// Drain client frames so close and ping control messages are processed.
	go func() {
		defer stop()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(msg ChangeMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(msg)
	}
	if err := send(ChangeMessage{Type: changeTypeReady, BoardID: boardID}); err != nil {
		return
	}

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		case <-keepAlive.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case <-ch:
			if err := send(ChangeMessage{Type: changeTypeBoardChanged, BoardID: boardID}); err != nil {
				return
			}
		}
	}
}
