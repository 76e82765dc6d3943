package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Shopping", CategoryLabel("shopping"))
	assert.Equal(t, "errands", CategoryLabel("errands"))

	_, ok := LookupCategory("errands")
	assert.False(t, ok)
}

func TestUpdateTodoInput_IsCompleted(t *testing.T) {
	yes, no := true, false

	assert.False(t, UpdateTodoInput{}.IsCompleted())
	assert.False(t, UpdateTodoInput{Completed: &no}.IsCompleted())
	assert.True(t, UpdateTodoInput{Completed: &yes}.IsCompleted())
}
