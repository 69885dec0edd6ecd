package web

import (
	"net/http"
	"strconv"
	"strings"

	"lanes-cli/internal/model"
	"lanes-cli/internal/store"
)

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.svc.Boards(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

func (s *Server) handleBoardCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBoardRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svc.CreateBoard(r.Context(), s.actorForRequest(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Board(r.Context(), r.PathValue("boardId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBoardRename(w http.ResponseWriter, r *http.Request) {
	var req model.RenameRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svc.RenameBoard(r.Context(), s.actorForRequest(r), r.PathValue("boardId"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleBoardDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBoard(r.Context(), s.actorForRequest(r), r.PathValue("boardId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Board deleted"})
}

func (s *Server) handleBoardRebalance(w http.ResponseWriter, r *http.Request) {
	s.rebalance(w, r, model.BoardContainer(r.PathValue("boardId")))
}

func (s *Server) handleColumnRebalance(w http.ResponseWriter, r *http.Request) {
	s.rebalance(w, r, model.ColumnContainer(r.PathValue("columnId")))
}

func (s *Server) handleInboxRebalance(w http.ResponseWriter, r *http.Request) {
	s.rebalance(w, r, model.InboxContainer(s.actorForRequest(r)))
}

func (s *Server) rebalance(w http.ResponseWriter, r *http.Request, ref model.ContainerRef) {
	n, err := s.svc.Rebalance(r.Context(), s.actorForRequest(r), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.RebalanceResponse{Message: "Positions rebalanced", Updated: n})
}

func (s *Server) handleColumnCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateColumnRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.CreateColumn(r.Context(), s.actorForRequest(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleColumnSwitch(w http.ResponseWriter, r *http.Request) {
	var req model.SwitchColumnRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.SwitchColumnPosition(r.Context(), s.actorForRequest(r), r.PathValue("columnId"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SwitchResponse{Message: "Column position updated", NewPosition: res.NewPosition})
}

func (s *Server) handleColumnRename(w http.ResponseWriter, r *http.Request) {
	var req model.RenameRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.RenameColumn(r.Context(), s.actorForRequest(r), r.PathValue("columnId"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleColumnDelete(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.DeleteColumn(r.Context(), s.actorForRequest(r), r.PathValue("columnId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.CreateTask(r.Context(), s.actorForRequest(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleTaskSwitch(w http.ResponseWriter, r *http.Request) {
	var req model.SwitchTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.SwitchTaskPosition(r.Context(), s.actorForRequest(r), r.PathValue("taskId"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SwitchResponse{Message: "Task position updated", NewPosition: res.NewPosition})
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.UpdateTask(r.Context(), s.actorForRequest(r), r.PathValue("taskId"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.DeleteTask(r.Context(), s.actorForRequest(r), r.PathValue("taskId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.Inbox(r.Context(), s.actorForRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.EventFilter{EntityID: strings.TrimSpace(q.Get("entity"))}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Message: "invalid limit"})
			return
		}
		f.Limit = n
	}
	evs, err := s.svc.Events(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}
