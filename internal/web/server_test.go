package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"lanes-cli/internal/model"
	"lanes-cli/internal/mutate"
	"lanes-cli/internal/store"
)

const testActor = "act-a"

type testServer struct {
	*httptest.Server
	bc   *Broadcaster
	hook *test.Hook
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "lanes.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	bc := NewBroadcaster()
	svc := mutate.New(st, mutate.WithNotifier(bc), mutate.WithLogger(logger))
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", ActorID: testActor, Logger: logger}, svc, bc)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, bc: bc, hook: hook}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (ts *testServer) mustBoard(t *testing.T) model.Board {
	t.Helper()
	var b model.Board
	if code := ts.do(t, http.MethodPost, "/boards/create", model.CreateBoardRequest{Name: "Board"}, &b); code != http.StatusCreated {
		t.Fatalf("create board: status %d", code)
	}
	return b
}

func (ts *testServer) mustColumn(t *testing.T, boardID, name string) model.Column {
	t.Helper()
	var c model.Column
	if code := ts.do(t, http.MethodPost, "/columns/create", model.CreateColumnRequest{BoardID: boardID, Name: name}, &c); code != http.StatusCreated {
		t.Fatalf("create column: status %d", code)
	}
	return c
}

func (ts *testServer) mustTask(t *testing.T, columnID, title string) model.Task {
	t.Helper()
	var task model.Task
	if code := ts.do(t, http.MethodPost, "/tasks/create", model.CreateTaskRequest{Title: title, ColumnID: columnID}, &task); code != http.StatusCreated {
		t.Fatalf("create task: status %d", code)
	}
	return task
}

func TestHealth_OK(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestColumnSwitch_TodoDone_EndToEnd(t *testing.T) {
	ts := newTestServer(t)
	b := ts.mustBoard(t)
	todo := ts.mustColumn(t, b.ID, "Todo")
	done := ts.mustColumn(t, b.ID, "Done")
	if todo.Position != 1000 || done.Position != 2000 {
		t.Fatalf("unexpected create positions: %v %v", todo.Position, done.Position)
	}

	var res model.SwitchResponse
	code := ts.do(t, http.MethodPut, "/columns/switch-position/"+done.ID,
		model.SwitchColumnRequest{AfterColumnID: todo.ID, BoardID: b.ID}, &res)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%+v)", code, res)
	}
	if res.NewPosition != 500 {
		t.Fatalf("expected 500, got %v", res.NewPosition)
	}

	var snap model.BoardSnapshot
	if code := ts.do(t, http.MethodGet, "/boards/"+b.ID, nil, &snap); code != http.StatusOK {
		t.Fatalf("get board: %d", code)
	}
	if len(snap.Columns) != 2 || snap.Columns[0].Name != "Done" || snap.Columns[1].Name != "Todo" {
		t.Fatalf("unexpected order: %+v", snap.Columns)
	}

	var logged bool
	for _, e := range ts.hook.AllEntries() {
		if e.Message == "http.request" && e.Data["route"] == "PUT /columns/switch-position/{columnId}" && e.Data["status"] == http.StatusOK {
			logged = true
		}
	}
	if !logged {
		t.Fatalf("expected a request log for the switch")
	}
}

func TestTaskSwitch_StatusCodes(t *testing.T) {
	ts := newTestServer(t)
	b := ts.mustBoard(t)
	col := ts.mustColumn(t, b.ID, "Todo")
	x := ts.mustTask(t, col.ID, "x")
	y := ts.mustTask(t, col.ID, "y")
	z := ts.mustTask(t, col.ID, "z")

	cases := []struct {
		name string
		path string
		req  model.SwitchTaskRequest
		want int
	}{
		{"malformed task id", "/tasks/switch-position/not-a-uuid", model.SwitchTaskRequest{ColumnID: col.ID}, http.StatusBadRequest},
		{"malformed neighbour", "/tasks/switch-position/" + z.ID, model.SwitchTaskRequest{ColumnID: col.ID, BeforeTaskID: "zzz"}, http.StatusBadRequest},
		{"unknown neighbour", "/tasks/switch-position/" + z.ID, model.SwitchTaskRequest{ColumnID: col.ID, BeforeTaskID: uuid.NewString()}, http.StatusNotFound},
		{"unknown column", "/tasks/switch-position/" + z.ID, model.SwitchTaskRequest{ColumnID: uuid.NewString()}, http.StatusNotFound},
		{"unknown task", "/tasks/switch-position/" + uuid.NewString(), model.SwitchTaskRequest{ColumnID: col.ID}, http.StatusNotFound},
		{"inverted neighbours", "/tasks/switch-position/" + z.ID, model.SwitchTaskRequest{ColumnID: col.ID, BeforeTaskID: y.ID, AfterTaskID: x.ID}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var res model.ErrorResponse
			if code := ts.do(t, http.MethodPut, tc.path, tc.req, &res); code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, code, res.Message)
			}
			if res.Message == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestTaskSwitch_BetweenNeighbours_Mean(t *testing.T) {
	ts := newTestServer(t)
	b := ts.mustBoard(t)
	col := ts.mustColumn(t, b.ID, "Todo")
	x := ts.mustTask(t, col.ID, "x")
	y := ts.mustTask(t, col.ID, "y")
	z := ts.mustTask(t, col.ID, "z")

	var res model.SwitchResponse
	code := ts.do(t, http.MethodPut, "/tasks/switch-position/"+z.ID,
		model.SwitchTaskRequest{ColumnID: col.ID, BoardID: b.ID, BeforeTaskID: x.ID, AfterTaskID: y.ID}, &res)
	if code != http.StatusOK || res.NewPosition != 1500 {
		t.Fatalf("expected 200/1500, got %d/%v", code, res.NewPosition)
	}
}

func TestTaskSwitch_UnknownBodyField_BadRequest(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/tasks/switch-position/"+uuid.NewString(), strings.NewReader(`{"columnID":"x","bogus":1}`))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTaskCreate_NoColumn_GoesToActorInbox(t *testing.T) {
	ts := newTestServer(t)
	first := ts.mustTask(t, "", "first")
	second := ts.mustTask(t, "", "second")
	if second.Position != first.Position-store.HoldingGap {
		t.Fatalf("expected holding gap, got %v then %v", first.Position, second.Position)
	}

	var inbox []model.Task
	if code := ts.do(t, http.MethodGet, "/inbox", nil, &inbox); code != http.StatusOK {
		t.Fatalf("inbox: %d", code)
	}
	if len(inbox) != 2 || inbox[0].ID != second.ID {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
}

func TestRebalance_Endpoints(t *testing.T) {
	ts := newTestServer(t)
	b := ts.mustBoard(t)
	todo := ts.mustColumn(t, b.ID, "Todo")
	done := ts.mustColumn(t, b.ID, "Done")
	if code := ts.do(t, http.MethodPut, "/columns/switch-position/"+done.ID, model.SwitchColumnRequest{AfterColumnID: todo.ID, BoardID: b.ID}, nil); code != http.StatusOK {
		t.Fatalf("switch: %d", code)
	}

	var res model.RebalanceResponse
	if code := ts.do(t, http.MethodPost, "/boards/"+b.ID+"/rebalance", nil, &res); code != http.StatusOK {
		t.Fatalf("rebalance: %d", code)
	}
	if res.Updated != 2 {
		t.Fatalf("expected 2 updated, got %d", res.Updated)
	}
	if code := ts.do(t, http.MethodPost, "/boards/"+b.ID+"/rebalance", nil, &res); code != http.StatusOK || res.Updated != 0 {
		t.Fatalf("expected idempotent rebalance, got %d/%d", code, res.Updated)
	}
	if code := ts.do(t, http.MethodPost, "/columns/"+uuid.NewString()+"/rebalance", nil, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown column, got %d", code)
	}
}

func TestEvents_FilterByEntity(t *testing.T) {
	ts := newTestServer(t)
	b := ts.mustBoard(t)
	col := ts.mustColumn(t, b.ID, "Todo")

	var evs []model.Event
	if code := ts.do(t, http.MethodGet, "/events?entity="+col.ID, nil, &evs); code != http.StatusOK {
		t.Fatalf("events: %d", code)
	}
	if len(evs) != 1 || evs[0].Type != "column.create" {
		t.Fatalf("unexpected events: %+v", evs)
	}
	if code := ts.do(t, http.MethodGet, "/events?limit=abc", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", code)
	}
}

func TestBoardWS_NotifiesOnChange(t *testing.T) {
	ts := newTestServer(t)
	b := ts.mustBoard(t)
	col := ts.mustColumn(t, b.ID, "Todo")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/boards/" + b.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg ChangeMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read ready: %v", err)
	}
	if msg.Type != "ready" || msg.BoardID != b.ID {
		t.Fatalf("unexpected first message: %+v", msg)
	}

	_ = ts.mustTask(t, col.ID, "x")
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read change: %v", err)
	}
	if msg.Type != "board.changed" || msg.BoardID != b.ID {
		t.Fatalf("unexpected change message: %+v", msg)
	}
}

func TestBoardWS_UnknownBoard_NotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/boards/" + uuid.NewString() + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestBoardStream_SendsSnapshotSignals(t *testing.T) {
	ts := newTestServer(t)
	b := ts.mustBoard(t)
	_ = ts.mustColumn(t, b.ID, "Todo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/boards/"+b.ID+"/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type: %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "data: signals") && strings.Contains(line, b.ID) && strings.Contains(line, "Todo") {
			return
		}
	}
	t.Fatalf("stream ended without a board snapshot: %v", sc.Err())
}
