package todo

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"donezo/internal/model"
	"donezo/pkg/logger"
	"donezo/pkg/metrics"
)

// Store is the persistence the service runs on. Update and Delete return
// model.ErrTodoNotFound when the id does not exist.
type Store interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, task, category string) (model.Todo, error)
	Update(ctx context.Context, id int64, task, category string, completed bool) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// ListCache holds the full list between writes. Invalidate advances the
// generation; SetList stores only while the generation still equals gen.
type ListCache interface {
	GetList(ctx context.Context) ([]model.Todo, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetList(ctx context.Context, gen int64, todos []model.Todo) (bool, error)
	Invalidate(ctx context.Context) error
}

// Notifier receives successful writes.
type Notifier interface {
	TodoCreated(ctx context.Context, t model.Todo)
	TodoUpdated(ctx context.Context, t model.Todo)
	TodoDeleted(ctx context.Context, id int64)
}

type Option func(*Service)

// WithCache enables read-through caching of List.
func WithCache(c ListCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLoadTimeout bounds the store read shared by concurrent cache misses.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithNotifier publishes every successful write.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

type Service struct {
	store    Store
	cache    ListCache
	notifier Notifier
	logger   *zap.Logger

	// loads collapses concurrent cache misses of one generation into a
	// single store read.
	loads       singleflight.Group
	loadTimeout time.Duration
}

func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: log, loadTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all todos, newest first.
func (s *Service) List(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.list(ctx)
	if err != nil {
		metrics.IncrementTodoOperation("list", "error")
		return nil, err
	}
	metrics.IncrementTodoOperation("list", "ok")
	return todos, nil
}

func (s *Service) list(ctx context.Context) ([]model.Todo, error) {
	if s.cache == nil {
		return s.readStore(ctx)
	}
	log := logger.WithTrace(ctx, s.logger)

	todos, ok, err := s.cache.GetList(ctx)
	switch {
	case err != nil:
		metrics.IncrementCacheRequest("error")
		log.Warn("Todo cache read failed", zap.Error(err))
	case ok:
		metrics.IncrementCacheRequest("hit")
		return todos, nil
	default:
		metrics.IncrementCacheRequest("miss")
	}

	// The generation must be read before the store so that a write landing
	// in between makes the write-back a no-op.
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		log.Warn("Todo cache generation read failed", zap.Error(err))
		return s.readStore(ctx)
	}

	// The shared read outlives any single caller; each caller still waits
	// only as long as its own context allows.
	ch := s.loads.DoChan("list:"+strconv.FormatInt(gen, 10), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()

		todos, err := s.readStore(loadCtx)
		if err != nil {
			return nil, err
		}
		stored, err := s.cache.SetList(loadCtx, gen, todos)
		switch {
		case err != nil:
			log.Warn("Todo cache write failed", zap.Error(err))
		case !stored:
			log.Debug("Todo list changed during read, cache not updated", zap.Int64("generation", gen))
		}
		return todos, nil
	})

	select {
	case <-ctx.Done():
		return nil, storageError("list todos", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.Todo), nil
	}
}

func (s *Service) readStore(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.store.List(ctx)
	if err != nil {
		return nil, storageError("list todos", err)
	}
	return todos, nil
}

// Create validates in and inserts a new, not completed todo.
func (s *Service) Create(ctx context.Context, in model.CreateTodoInput) (model.Todo, error) {
	if strings.TrimSpace(in.Task) == "" || strings.TrimSpace(in.Category) == "" {
		metrics.IncrementTodoOperation("create", "invalid")
		return model.Todo{}, ErrInvalidInput
	}

	t, err := s.store.Create(ctx, in.Task, in.Category)
	if err != nil {
		metrics.IncrementTodoOperation("create", "error")
		return model.Todo{}, storageError("create todo", err)
	}

	s.afterWrite(ctx)
	if s.notifier != nil {
		s.notifier.TodoCreated(ctx, t)
	}
	metrics.IncrementTodoOperation("create", "ok")
	return t, nil
}

// Update replaces task, category and completed of todo id.
func (s *Service) Update(ctx context.Context, id int64, in model.UpdateTodoInput) (model.Todo, error) {
	t, err := s.store.Update(ctx, id, in.Task, in.Category, in.IsCompleted())
	if err != nil {
		if errors.Is(err, model.ErrTodoNotFound) {
			metrics.IncrementTodoOperation("update", "not_found")
			return model.Todo{}, ErrNotFound
		}
		metrics.IncrementTodoOperation("update", "error")
		return model.Todo{}, storageError("update todo", err)
	}

	s.afterWrite(ctx)
	if s.notifier != nil {
		s.notifier.TodoUpdated(ctx, t)
	}
	metrics.IncrementTodoOperation("update", "ok")
	return t, nil
}

// Delete removes todo id. Deleting an id that does not exist succeeds.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	switch {
	case errors.Is(err, model.ErrTodoNotFound):
		logger.WithTrace(ctx, s.logger).Debug("Delete of absent todo ignored", zap.Int64("todo_id", id))
		metrics.IncrementTodoOperation("delete", "not_found")
		return nil
	case err != nil:
		metrics.IncrementTodoOperation("delete", "error")
		return storageError("delete todo", err)
	}

	s.afterWrite(ctx)
	if s.notifier != nil {
		s.notifier.TodoDeleted(ctx, id)
	}
	metrics.IncrementTodoOperation("delete", "ok")
	return nil
}

func (s *Service) afterWrite(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Todo cache invalidation failed", zap.Error(err))
	}
}
