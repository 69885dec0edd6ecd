package web

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"lanes-cli/internal/mutate"
)

// ActorHeader carries the acting user id. Authentication is out of scope:
// the server trusts the header and falls back to ServerConfig.ActorID.
const ActorHeader = "X-Lanes-Actor"

type ServerConfig struct {
	Addr    string
	ActorID string
	Logger  *log.Logger
}

type Server struct {
	cfg    ServerConfig
	svc    *mutate.Service
	bc     *Broadcaster
	logger *log.Logger
}

// NewServer wires the HTTP API to svc. bc must be the notifier svc was built with,
// so that committed writes reach stream and websocket subscribers.
func NewServer(cfg ServerConfig, svc *mutate.Service, bc *Broadcaster) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.ActorID = strings.TrimSpace(cfg.ActorID)
	if svc == nil {
		return nil, errors.New("web: service is nil")
	}
	if bc == nil {
		bc = NewBroadcaster()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Server{cfg: cfg, svc: svc, bc: bc, logger: logger}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /boards", s.handleBoards)
	mux.HandleFunc("POST /boards/create", s.handleBoardCreate)
	mux.HandleFunc("GET /boards/{boardId}", s.handleBoard)
	mux.HandleFunc("PUT /boards/{boardId}", s.handleBoardRename)
	mux.HandleFunc("DELETE /boards/{boardId}", s.handleBoardDelete)
	mux.HandleFunc("POST /boards/{boardId}/rebalance", s.handleBoardRebalance)
	mux.HandleFunc("GET /boards/{boardId}/stream", s.handleBoardStream)
	mux.HandleFunc("GET /boards/{boardId}/ws", s.handleBoardWS)

	mux.HandleFunc("POST /columns/create", s.handleColumnCreate)
	mux.HandleFunc("PUT /columns/switch-position/{columnId}", s.handleColumnSwitch)
	mux.HandleFunc("PUT /columns/{columnId}", s.handleColumnRename)
	mux.HandleFunc("DELETE /columns/{columnId}", s.handleColumnDelete)
	mux.HandleFunc("POST /columns/{columnId}/rebalance", s.handleColumnRebalance)

	mux.HandleFunc("POST /tasks/create", s.handleTaskCreate)
	mux.HandleFunc("PUT /tasks/switch-position/{taskId}", s.handleTaskSwitch)
	mux.HandleFunc("PUT /tasks/{taskId}", s.handleTaskUpdate)
	mux.HandleFunc("DELETE /tasks/{taskId}", s.handleTaskDelete)

	mux.HandleFunc("GET /inbox", s.handleInbox)
	mux.HandleFunc("POST /inbox/rebalance", s.handleInboxRebalance)
	mux.HandleFunc("GET /events", s.handleEvents)
	return s.logRequests(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) actorForRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(ActorHeader)); v != "" {
		return v
	}
	return s.cfg.ActorID
}
