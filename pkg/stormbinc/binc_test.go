package stormbinc_test

import (
	"testing"
	"time"

	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/pkg/stormbinc"
	"github.com/stretchr/testify/assert"
)

func TestCodec(t *testing.T) {
	assert.Equal(t, "binc", stormbinc.Codec.Name())

	now := time.Now().UTC().Truncate(time.Second)
	todo := model.NewTodo(7, "Buy milk")
	todo.ID = 3
	todo.CreatedAt = &now
	todo.Complete()

	payload, err := stormbinc.Codec.Marshal(todo)
	assert.NoError(t, err)
	assert.NotEmpty(t, payload)

	var decoded model.Todo
	assert.NoError(t, stormbinc.Codec.Unmarshal(payload, &decoded))
	assert.Equal(t, 3, decoded.ID)
	assert.Equal(t, 7, decoded.UserID)
	assert.Equal(t, "Buy milk", decoded.Name)
	assert.True(t, decoded.IsCompleted)
	assert.True(t, now.Equal(*decoded.CreatedAt))
}
