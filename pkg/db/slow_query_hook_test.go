package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestSlowQueryTracer_LogsSlowStatements(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tracer := NewSlowQueryTracer(zap.New(core), 50*time.Millisecond)
	tracer.now = stepClock(80 * time.Millisecond)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL: "SELECT id, task\n\t FROM todos",
	})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 2")})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "slow-query", entry.Message)
	assert.Equal(t, "SELECT id, task FROM todos", entry.ContextMap()["sql"])
}

func TestSlowQueryTracer_IgnoresFastStatements(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tracer := NewSlowQueryTracer(zap.New(core), 50*time.Millisecond)
	tracer.now = stepClock(10 * time.Millisecond)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Equal(t, 0, logs.Len())
}

func TestSlowQueryTracer_MissingStartIsIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tracer := NewSlowQueryTracer(zap.New(core), 0)

	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})

	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, 100*time.Millisecond, tracer.slowThreshold)
}

func TestCompactSQL(t *testing.T) {
	assert.Equal(t, "unknown", compactSQL("  \n"))

	long := compactSQL("SELECT " + strings.Repeat("x", 400))
	assert.Len(t, long, maxLoggedSQL+3)
	assert.True(t, strings.HasSuffix(long, "..."))

	assert.Equal(t, "DELETE", command("delete FROM todos WHERE id = $1"))
}
