package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"donezo/internal/model"
)

// MemoryTodoRepository keeps todos in process memory. It follows the same
// contract as TodoRepository and is used for local runs without PostgreSQL.
type MemoryTodoRepository struct {
	mu     sync.RWMutex
	nextID int64
	last   time.Time
	now    func() time.Time
	todos  map[int64]model.Todo
}

func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{
		nextID: 1,
		now:    time.Now,
		todos:  make(map[int64]model.Todo),
	}
}

func (r *MemoryTodoRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryTodoRepository) List(context.Context) ([]model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryTodoRepository) Create(_ context.Context, task, category string) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.tick()
	t := model.Todo{
		ID:        r.nextID,
		Task:      task,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.todos[t.ID] = t
	return t, nil
}

func (r *MemoryTodoRepository) Update(_ context.Context, id int64, task, category string, completed bool) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return model.Todo{}, model.ErrTodoNotFound
	}
	t.Task = task
	t.Category = category
	t.Completed = completed
	t.UpdatedAt = r.tick()
	r.todos[id] = t
	return t, nil
}

func (r *MemoryTodoRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return model.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}

// tick returns a timestamp strictly after every previous one. Caller holds mu.
func (r *MemoryTodoRepository) tick() time.Time {
	now := r.now().UTC().Truncate(time.Microsecond)
	if !now.After(r.last) {
		now = r.last.Add(time.Microsecond)
	}
	r.last = now
	return now
}
