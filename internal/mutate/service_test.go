package mutate

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"lanes-cli/internal/model"
	"lanes-cli/internal/store"
)

const actor = "act-a"

type recordingNotifier struct {
	mu     sync.Mutex
	boards []string
}

func (n *recordingNotifier) BoardChanged(boardID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.boards = append(n.boards, boardID)
}

func (n *recordingNotifier) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.boards...)
}

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter, func()) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown tracer provider: %v", err)
		}
		otel.SetTracerProvider(prev)
	}
	return tp, exporter, cleanup
}

func attributesToMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "lanes.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(st, opts...)
}

func mustBoard(t *testing.T, svc *Service) model.Board {
	t.Helper()
	b, err := svc.CreateBoard(context.Background(), actor, model.CreateBoardRequest{Name: "Board"})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	return b
}

func mustColumn(t *testing.T, svc *Service, boardID, name string) model.Column {
	t.Helper()
	c, err := svc.CreateColumn(context.Background(), actor, model.CreateColumnRequest{BoardID: boardID, Name: name})
	if err != nil {
		t.Fatalf("create column: %v", err)
	}
	return c
}

func mustTask(t *testing.T, svc *Service, columnID, title string) model.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), actor, model.CreateTaskRequest{Title: title, ColumnID: columnID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestSwitchColumnPosition_TodoDone_ReturnsHalfAndNotifies(t *testing.T) {
	n := &recordingNotifier{}
	svc := newTestService(t, WithNotifier(n))
	b := mustBoard(t, svc)
	todo := mustColumn(t, svc, b.ID, "Todo")
	done := mustColumn(t, svc, b.ID, "Done")

	res, err := svc.SwitchColumnPosition(context.Background(), actor, done.ID, model.SwitchColumnRequest{AfterColumnID: todo.ID, BoardID: b.ID})
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if res.NewPosition != 500 {
		t.Fatalf("expected 500, got %v", res.NewPosition)
	}
	seen := n.seen()
	if len(seen) == 0 || seen[len(seen)-1] != b.ID {
		t.Fatalf("expected board notification, got %v", seen)
	}
}

func TestSwitchTaskPosition_MalformedIDs_Validation(t *testing.T) {
	svc := newTestService(t)
	good := uuid.NewString()
	cases := []struct {
		name   string
		taskID string
		req    model.SwitchTaskRequest
		field  string
	}{
		{"task id", "nope", model.SwitchTaskRequest{}, "taskId"},
		{"before id", good, model.SwitchTaskRequest{BeforeTaskID: "x"}, "beforeTaskId"},
		{"after id", good, model.SwitchTaskRequest{AfterTaskID: "x"}, "afterTaskId"},
		{"column id", good, model.SwitchTaskRequest{ColumnID: "x"}, "columnId"},
		{"self neighbour", good, model.SwitchTaskRequest{BeforeTaskID: good}, "beforeTaskId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SwitchTaskPosition(context.Background(), actor, tc.taskID, tc.req)
			var ve ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected ValidationError on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestSwitchTaskPosition_SameNeighbours_Validation(t *testing.T) {
	svc := newTestService(t)
	n := uuid.NewString()
	_, err := svc.SwitchTaskPosition(context.Background(), actor, uuid.NewString(), model.SwitchTaskRequest{BeforeTaskID: n, AfterTaskID: n})
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSwitchColumnPosition_MissingBoard_Validation(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.SwitchColumnPosition(context.Background(), actor, uuid.NewString(), model.SwitchColumnRequest{})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "boardId" {
		t.Fatalf("expected boardId ValidationError, got %v", err)
	}
}

func TestSwitchTaskPosition_UnknownNeighbour_NotFound(t *testing.T) {
	svc := newTestService(t)
	b := mustBoard(t, svc)
	col := mustColumn(t, svc, b.ID, "Todo")
	task := mustTask(t, svc, col.ID, "x")

	_, err := svc.SwitchTaskPosition(context.Background(), actor, task.ID, model.SwitchTaskRequest{ColumnID: col.ID, BeforeTaskID: uuid.NewString()})
	var nf store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSwitchTaskPosition_Rebalance_LogsAndTraces(t *testing.T) {
	tp, exporter, restore := setupTestTracer(t)
	defer restore()
	logger, hook := test.NewNullLogger()
	logger.SetFormatter(&log.JSONFormatter{})

	svc := newTestService(t, WithLogger(logger))
	b := mustBoard(t, svc)
	col := mustColumn(t, svc, b.ID, "Todo")
	other := mustColumn(t, svc, b.ID, "Doing")
	first := mustTask(t, svc, col.ID, "first")
	second := mustTask(t, svc, col.ID, "second")
	moving := mustTask(t, svc, other.ID, "moving")

	// Thirty halvings of a 1000 gap leave the last pair closer than epsilon.
	ctx := context.Background()
	before, after := first.ID, second.ID
	for i := 0; i < 30; i++ {
		task := mustTask(t, svc, other.ID, "filler")
		if _, err := svc.SwitchTaskPosition(ctx, actor, task.ID, model.SwitchTaskRequest{ColumnID: col.ID, BeforeTaskID: before, AfterTaskID: after}); err != nil {
			t.Fatalf("fill %d: %v", i, err)
		}
		after = task.ID
	}
	exporter.Reset()
	hook.Reset()

	res, err := svc.SwitchTaskPosition(ctx, actor, moving.ID, model.SwitchTaskRequest{ColumnID: col.ID, BeforeTaskID: before, AfterTaskID: after})
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if res.Rebalanced == 0 {
		t.Fatalf("expected a rebalance, got %+v", res)
	}
	if res.NewPosition != 1500 {
		t.Fatalf("expected 1500 after rebalance, got %v", res.NewPosition)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Message != "position.rebalance" {
		t.Fatalf("expected position.rebalance log, got %#v", entry)
	}
	if entry.Data["container_id"] != col.ID || entry.Data["cause"] != "task.move" {
		t.Fatalf("unexpected log fields: %#v", entry.Data)
	}

	if err := tp.ForceFlush(ctx); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "position.switch_task" || span.Status.Code != codes.Ok {
		t.Fatalf("unexpected span: %s %v", span.Name, span.Status.Code)
	}
	attrs := attributesToMap(span.Attributes)
	if attrs["lanes.position"] != float64(1500) {
		t.Fatalf("unexpected position attribute: %#v", attrs["lanes.position"])
	}
	if n, ok := attrs["lanes.rebalanced"].(int64); !ok || n == 0 {
		t.Fatalf("unexpected rebalanced attribute: %#v", attrs["lanes.rebalanced"])
	}
}

func TestSwitchTaskPosition_Failure_SpanError(t *testing.T) {
	tp, exporter, restore := setupTestTracer(t)
	defer restore()
	svc := newTestService(t)

	_, err := svc.SwitchTaskPosition(context.Background(), actor, uuid.NewString(), model.SwitchTaskRequest{})
	var nf store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush: %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Fatalf("expected one errored span, got %+v", spans)
	}
}

func TestBoard_CachedUntilWrite(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "lanes.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	svc := New(st, WithCache(store.NewCache(st, client, time.Minute)))

	ctx := context.Background()
	b := mustBoard(t, svc)
	todo := mustColumn(t, svc, b.ID, "Todo")

	snap, err := svc.Board(ctx, b.ID)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(snap.Columns) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !mr.Exists("board:" + b.ID) {
		t.Fatalf("expected cached snapshot")
	}

	_ = mustTask(t, svc, todo.ID, "x")
	if mr.Exists("board:" + b.ID) {
		t.Fatalf("expected eviction after write")
	}
	snap, err = svc.Board(ctx, b.ID)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(snap.Columns[0].Tasks) != 1 {
		t.Fatalf("expected fresh snapshot, got %+v", snap.Columns[0].Tasks)
	}
}

func TestCreateTask_EmptyTitle_Validation(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CreateTask(context.Background(), actor, model.CreateTaskRequest{Title: "  "})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("expected title ValidationError, got %v", err)
	}
}

func TestInbox_NewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a, err := svc.CreateTask(ctx, actor, model.CreateTaskRequest{Title: "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := svc.CreateTask(ctx, actor, model.CreateTaskRequest{Title: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tasks, err := svc.Inbox(ctx, actor)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != b.ID || tasks[1].ID != a.ID {
		t.Fatalf("unexpected inbox: %+v", tasks)
	}
}

func TestRebalance_ExplicitColumn_CountsAndValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	b := mustBoard(t, svc)
	col := mustColumn(t, svc, b.ID, "Todo")
	x := mustTask(t, svc, col.ID, "x")
	y := mustTask(t, svc, col.ID, "y")
	if _, err := svc.SwitchTaskPosition(ctx, actor, y.ID, model.SwitchTaskRequest{ColumnID: col.ID, AfterTaskID: x.ID}); err != nil {
		t.Fatalf("switch: %v", err)
	}

	n, err := svc.Rebalance(ctx, actor, model.ColumnContainer(col.ID))
	if err != nil {
		t.Fatalf("rebalance: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 updated, got %d", n)
	}
	if n, err = svc.Rebalance(ctx, actor, model.ColumnContainer(col.ID)); err != nil || n != 0 {
		t.Fatalf("expected idempotent rebalance, got (%d, %v)", n, err)
	}

	_, err = svc.Rebalance(ctx, actor, model.ColumnContainer("bad"))
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
