// Package view keeps a client-side copy of the todo collection and derives
// the filtered projection shown to the user.
//
// Writes are merged from the API response (prepend on create, replace in
// place on update, remove on delete) without re-fetching the collection.
// A View is not safe for concurrent use; each call completes its request
// before returning.
package view

import (
	"context"
	"errors"
	"slices"
	"strings"

	"donezo/internal/client"
	"donezo/internal/model"
)

// Banner messages shown after a failed request.
const (
	MsgLoadFailed   = "Could not load todos."
	MsgInvalidData  = "Invalid data format from server."
	MsgAddFailed    = "Failed to add todo. Please try again."
	MsgUpdateFailed = "Failed to update todo. Please try again."
	MsgToggleFailed = "Failed to update todo status. Please try again."
	MsgDeleteFailed = "Failed to delete todo. Please try again."
)

const (
	TabAll    = "all"
	TabActive = "active"
)

// TodoAPI is implemented by *client.Client.
type TodoAPI interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, in model.CreateTodoInput) (model.Todo, error)
	Update(ctx context.Context, id int64, in model.UpdateTodoInput) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Filter composes the visibility predicates with logical AND.
type Filter struct {
	ShowCompleted bool
	// Category is empty for all categories.
	Category string
	Search   string
}

type State struct {
	Todos   []model.Todo
	Loading bool
	// Error is the banner text, empty when there is nothing to show.
	Error  string
	Tab    string
	Filter Filter
}

type Counts struct {
	Total     int
	Completed int
	Remaining int
}

type View struct {
	api   TodoAPI
	state State
}

func New(api TodoAPI) *View {
	return &View{
		api: api,
		state: State{
			Todos:   []model.Todo{},
			Loading: true,
			Tab:     TabAll,
			Filter:  Filter{ShowCompleted: true},
		},
	}
}

// State returns a snapshot; mutating it does not affect the view.
func (v *View) State() State {
	s := v.state
	s.Todos = slices.Clone(v.state.Todos)
	return s
}

// Load fetches the whole collection. On failure the collection is left
// empty and the load banner is set; a body that is not a todo array gets
// its own banner.
func (v *View) Load(ctx context.Context) error {
	defer func() { v.state.Loading = false }()

	todos, err := v.api.List(ctx)
	if err != nil {
		v.state.Todos = []model.Todo{}
		v.state.Error = MsgLoadFailed
		if errors.Is(err, client.ErrInvalidResponse) {
			v.state.Error = MsgInvalidData
		}
		return err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	v.state.Todos = todos
	return nil
}

// Add creates a todo and prepends it. A blank task is ignored.
func (v *View) Add(ctx context.Context, task, category string) error {
	if strings.TrimSpace(task) == "" {
		return nil
	}

	t, err := v.api.Create(ctx, model.CreateTodoInput{Task: task, Category: category})
	if err != nil {
		v.state.Error = MsgAddFailed
		return err
	}
	v.state.Todos = append([]model.Todo{t}, v.state.Todos...)
	return nil
}

// Edit changes task and category of id, keeping its local completed flag.
func (v *View) Edit(ctx context.Context, id int64, task, category string) error {
	completed := false
	if i := v.index(id); i >= 0 {
		completed = v.state.Todos[i].Completed
	}

	t, err := v.api.Update(ctx, id, model.UpdateTodoInput{Task: task, Category: category, Completed: &completed})
	if err != nil {
		v.state.Error = MsgUpdateFailed
		return err
	}
	v.replace(t)
	return nil
}

// ToggleCompleted flips the completed flag of a locally known todo.
func (v *View) ToggleCompleted(ctx context.Context, id int64) error {
	i := v.index(id)
	if i < 0 {
		return nil
	}

	cur := v.state.Todos[i]
	completed := !cur.Completed
	t, err := v.api.Update(ctx, id, model.UpdateTodoInput{Task: cur.Task, Category: cur.Category, Completed: &completed})
	if err != nil {
		v.state.Error = MsgToggleFailed
		return err
	}
	v.replace(t)
	return nil
}

func (v *View) Delete(ctx context.Context, id int64) error {
	if err := v.api.Delete(ctx, id); err != nil {
		v.state.Error = MsgDeleteFailed
		return err
	}

	kept := v.state.Todos[:0:0]
	for _, t := range v.state.Todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	v.state.Todos = kept
	return nil
}

// SelectTab maps a tab onto the category and completion filters.
func (v *View) SelectTab(tab string) {
	v.state.Tab = tab
	switch tab {
	case TabAll:
		v.state.Filter.Category = ""
		v.state.Filter.ShowCompleted = true
	case TabActive:
		v.state.Filter.Category = ""
		v.state.Filter.ShowCompleted = false
	default:
		v.state.Filter.Category = tab
		v.state.Filter.ShowCompleted = true
	}
}

func (v *View) SetSearch(term string) {
	v.state.Filter.Search = term
}

func (v *View) SetShowCompleted(show bool) {
	v.state.Filter.ShowCompleted = show
}

func (v *View) DismissError() {
	v.state.Error = ""
}

// Filtered returns the visible todos in collection order.
func (v *View) Filtered() []model.Todo {
	return Apply(v.state.Todos, v.state.Filter)
}

func (v *View) Counts() Counts {
	c := Counts{Total: len(v.state.Todos)}
	for _, t := range v.state.Todos {
		if t.Completed {
			c.Completed++
		}
	}
	c.Remaining = c.Total - c.Completed
	return c
}

func (v *View) CategoryLabel(value string) string {
	return model.CategoryLabel(value)
}

// Apply returns the todos matching f without modifying todos.
func Apply(todos []model.Todo, f Filter) []model.Todo {
	search := strings.ToLower(f.Search)

	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if !f.ShowCompleted && t.Completed {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if !matches(t, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t model.Todo, search string) bool {
	if strings.Contains(strings.ToLower(t.Task), search) {
		return true
	}
	c, ok := model.LookupCategory(t.Category)
	return ok && strings.Contains(strings.ToLower(c.Label), search)
}

func (v *View) index(id int64) int {
	for i, t := range v.state.Todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (v *View) replace(t model.Todo) {
	if i := v.index(t.ID); i >= 0 {
		v.state.Todos[i] = t
	}
}
