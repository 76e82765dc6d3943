package model

import (
	"errors"
	"time"
)

var ErrTodoNotFound = errors.New("todo not found")

type Todo struct {
	ID        int64     `json:"id"`
	Task      string    `json:"task"`
	Category  string    `json:"category"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTodoInput is the body of POST /api/todos.
type CreateTodoInput struct {
	Task     string `json:"task"`
	Category string `json:"category"`
}

// UpdateTodoInput is the body of PUT /api/todos/:id. All three fields are
// replaced; a missing completed flag is stored as false.
type UpdateTodoInput struct {
	Task      string `json:"task"`
	Category  string `json:"category"`
	Completed *bool  `json:"completed"`
}

// IsCompleted reports the completed flag, treating absent as false.
func (in UpdateTodoInput) IsCompleted() bool {
	return in.Completed != nil && *in.Completed
}
