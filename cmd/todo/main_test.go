package main

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"donezo/internal/handler"
	"donezo/internal/httpserver"
	"donezo/internal/repository"
	todosvc "donezo/internal/service/todo"
	"donezo/internal/view"
)

func newAPI(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryTodoRepository()
	h := handler.NewTodoHandler(todosvc.NewService(repo, zap.NewNop()), zap.NewNop(), time.Second)
	srv := httptest.NewServer(httpserver.NewRouter(h, httpserver.Options{Logger: zap.NewNop(), DB: repo}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestRun_AddToggleList(t *testing.T) {
	api := newAPI(t)

	out, err := runCLI(t, "-api", api, "add", "-category", "shopping", "Buy", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Shopping")

	_, err = runCLI(t, "-api", api, "add", "-category", "health", "Yoga")
	require.NoError(t, err)

	out, err = runCLI(t, "-api", api, "toggle", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 total, 1 completed, 1 remaining")

	out, err = runCLI(t, "-api", api, "list", "-tab", view.TabActive)
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Yoga")

	out, err = runCLI(t, "-api", api, "list", "-search", "HEALTH")
	require.NoError(t, err)
	assert.Contains(t, out, "Yoga")
	assert.NotContains(t, out, "Buy milk")
}

func TestRun_EditAndDelete(t *testing.T) {
	api := newAPI(t)

	_, err := runCLI(t, "-api", api, "add", "-category", "work", "Draft")
	require.NoError(t, err)

	out, err := runCLI(t, "-api", api, "edit", "1", "Final", "draft")
	require.NoError(t, err)
	assert.Contains(t, out, "Final draft")
	assert.Contains(t, out, "Work")

	out, err = runCLI(t, "-api", api, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "0 total")
}

func TestRun_Errors(t *testing.T) {
	api := newAPI(t)

	_, err := runCLI(t, "-api", api)
	assert.Error(t, err)

	_, err = runCLI(t, "-api", api, "toggle", "abc")
	assert.ErrorContains(t, err, "invalid todo id")

	_, err = runCLI(t, "-api", api, "edit", "9", "x")
	assert.EqualError(t, err, view.MsgUpdateFailed)

	_, err = runCLI(t, "-api", "http://127.0.0.1:1", "list")
	assert.EqualError(t, err, view.MsgLoadFailed)
}

func TestRun_Health(t *testing.T) {
	out, err := runCLI(t, "-api", newAPI(t), "health")
	require.NoError(t, err)
	assert.Contains(t, out, "ok ")
}
