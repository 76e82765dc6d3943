package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTraceID(t *testing.T) {
	a, b := GenerateTraceID(), GenerateTraceID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestContextRoundTrip(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))

	ctx := WithContext(context.Background(), "abc123")
	assert.Equal(t, "abc123", FromContext(ctx))
}
