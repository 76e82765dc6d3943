package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncrementTodoOperation(t *testing.T) {
	before := testutil.ToFloat64(TodoOperationCount.WithLabelValues("create", "ok"))
	IncrementTodoOperation("create", "ok")
	IncrementTodoOperation("create", "ok")
	after := testutil.ToFloat64(TodoOperationCount.WithLabelValues("create", "ok"))

	assert.Equal(t, before+2, after)
}

func TestIncrementSlowQuery(t *testing.T) {
	before := testutil.ToFloat64(SlowQueryCount.WithLabelValues("SELECT"))
	IncrementSlowQuery("SELECT", 300*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(SlowQueryCount.WithLabelValues("SELECT")))
}

func TestRecordHTTPRequestDuration(t *testing.T) {
	RecordHTTPRequestDuration("GET", "/api/todos", "200", 5*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(HTTPRequestDuration, "http_request_duration_seconds"), 1)
}
