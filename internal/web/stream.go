package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

const keepAliveEvery = 25 * time.Second

// handleBoardStream pushes the board snapshot as datastar signals, once on
// connect and again after every committed change to the board.
func (s *Server) handleBoardStream(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardId")
	render := func() (map[string]any, error) {
		snap, err := s.svc.Board(r.Context(), boardID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"board": snap}, nil
	}

	// Fail before switching to SSE so unknown boards still get a plain 404.
	first, err := render()
	if err != nil {
		writeError(w, r, err)
		return
	}

	h := s.bc.hubFor(boardKey(boardID))
	ch, cancel := h.subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	_ = sse.MarshalAndPatchSignals(first)

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			sig, err := render()
			if err != nil {
				_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
				continue
			}
			_ = sse.MarshalAndPatchSignals(sig)
		}
	}
}
