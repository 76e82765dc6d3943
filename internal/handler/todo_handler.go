package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"donezo/internal/model"
	todosvc "donezo/internal/service/todo"
	"donezo/pkg/logger"
)

// TodoService is implemented by *todo.Service.
type TodoService interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, in model.CreateTodoInput) (model.Todo, error)
	Update(ctx context.Context, id int64, in model.UpdateTodoInput) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
}

type TodoHandler struct {
	svc     TodoService
	logger  *zap.Logger
	timeout time.Duration
}

func NewTodoHandler(svc TodoService, logger *zap.Logger, timeout time.Duration) *TodoHandler {
	return &TodoHandler{svc: svc, logger: logger, timeout: timeout}
}

func (h *TodoHandler) ListTodos(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	todos, err := h.svc.List(ctx)
	if err != nil {
		h.writeError(c, "ListTodos", err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var in model.CreateTodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.log(c).Warn("CreateTodo: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	todo, err := h.svc.Create(ctx, in)
	if err != nil {
		h.writeError(c, "CreateTodo", err)
		return
	}

	h.log(c).Info("CreateTodo: success", zap.Int64("todo_id", todo.ID))
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var in model.UpdateTodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.log(c).Warn("UpdateTodo: invalid body", zap.Int64("todo_id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	todo, err := h.svc.Update(ctx, id, in)
	if err != nil {
		h.writeError(c, "UpdateTodo", err)
		return
	}

	h.log(c).Info("UpdateTodo: success", zap.Int64("todo_id", id), zap.Bool("completed", todo.Completed))
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		h.writeError(c, "DeleteTodo", err)
		return
	}

	h.log(c).Info("DeleteTodo: success", zap.Int64("todo_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})
}

func (h *TodoHandler) parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.log(c).Warn("invalid todo id", zap.String("todo_id", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return 0, false
	}
	return id, true
}

func (h *TodoHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *TodoHandler) writeError(c *gin.Context, op string, err error) {
	var storageErr *todosvc.StorageError
	switch {
	case errors.Is(err, todosvc.ErrInvalidInput):
		h.log(c).Warn(op+": validation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, todosvc.ErrNotFound):
		h.log(c).Info(op+": not found", zap.String("todo_id", c.Param("id")))
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
	case errors.As(err, &storageErr):
		h.log(c).Error(op+": storage failure", zap.String("op", storageErr.Op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.log(c).Error(op+": unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *TodoHandler) log(c *gin.Context) *zap.Logger {
	return logger.WithTrace(c.Request.Context(), h.logger)
}
