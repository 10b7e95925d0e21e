package model_test

import (
	"testing"
	"time"

	"github.com/mdouchement/todo/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNewTodo(t *testing.T) {
	todo := model.NewTodo(42, "Buy milk")
	assert.Equal(t, 0, todo.ID)
	assert.Equal(t, 42, todo.UserID)
	assert.Equal(t, "Buy milk", todo.Name)
	assert.False(t, todo.IsCompleted)

	todo.Complete()
	assert.True(t, todo.IsCompleted)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	s := &model.Session{ExpireAt: now.Add(time.Minute)}
	assert.False(t, s.Expired(now))

	s.ExpireAt = now
	assert.True(t, s.Expired(now))

	s.ExpireAt = now.Add(-time.Minute)
	assert.True(t, s.Expired(now))
}
