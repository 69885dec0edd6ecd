package mutate

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lanes-cli/internal/model"
	"lanes-cli/internal/store"
)

const tracerName = "lanes-cli/internal/mutate"

// Notifier is told about every committed change that affects a board.
type Notifier interface {
	BoardChanged(boardID string)
}

// Service is the server side of the move confirmation protocol plus the
// create, rename and delete operations around it. All writes go through the
// store's transactions; the service validates input, evicts cached
// snapshots and notifies subscribers after commit.
type Service struct {
	store    *store.Store
	cache    *store.Cache
	notifier Notifier
	logger   *log.Logger
	tracer   trace.Tracer
}

type Option func(*Service)

func WithCache(c *store.Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(st *store.Store, opts ...Option) *Service {
	if st == nil {
		panic("mutate.New: store is nil")
	}
	s := &Service{store: st}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = store.NewCache(st, nil, 0)
	}
	if s.logger == nil {
		s.logger = log.StandardLogger()
	}
	s.tracer = otel.Tracer(tracerName)
	return s
}

// Store exposes the underlying store for read-only callers such as doctor.
func (s *Service) Store() *store.Store { return s.store }

func (s *Service) changed(ctx context.Context, boardIDs ...string) {
	s.cache.Evict(ctx, boardIDs...)
	if s.notifier == nil {
		return
	}
	for _, id := range boardIDs {
		if id != "" {
			s.notifier.BoardChanged(id)
		}
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func requireActor(actorID string) (string, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return "", ValidationError{Field: "actor", Reason: "missing"}
	}
	return actorID, nil
}

// requireID accepts only well-formed UUIDs.
func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ValidationError{Field: field, Reason: "missing"}
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", ValidationError{Field: field, Reason: "not a valid id"}
	}
	return id, nil
}

// optionalID accepts an empty value or a well-formed UUID.
func optionalID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", nil
	}
	return requireID(field, id)
}

func requireName(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ValidationError{Field: field, Reason: "empty"}
	}
	return v, nil
}

// validateNeighbours rejects neighbour ids that are malformed, equal to each
// other, or equal to the moving item.
func validateNeighbours(itemID, beforeField, beforeID, afterField, afterID string) (string, string, error) {
	before, err := optionalID(beforeField, beforeID)
	if err != nil {
		return "", "", err
	}
	after, err := optionalID(afterField, afterID)
	if err != nil {
		return "", "", err
	}
	if before != "" && before == after {
		return "", "", ValidationError{Field: afterField, Reason: "same as " + beforeField}
	}
	if before == itemID {
		return "", "", ValidationError{Field: beforeField, Reason: "item cannot be its own neighbour"}
	}
	if after == itemID {
		return "", "", ValidationError{Field: afterField, Reason: "item cannot be its own neighbour"}
	}
	return before, after, nil
}

func (s *Service) logRebalance(ref model.ContainerRef, n int, cause string) {
	if n <= 0 {
		return
	}
	s.logger.WithFields(log.Fields{
		"container_kind": string(ref.Kind),
		"container_id":   ref.ID,
		"updated":        n,
		"cause":          cause,
	}).Info("position.rebalance")
}
