package serializer

import (
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/internal/server/service"
)

// Todo serializes the render of a todo.
func Todo(m *model.Todo) map[string]any {
	return map[string]any{
		"ID":          m.ID,
		"Name":        m.Name,
		"IsCompleted": m.IsCompleted,
		"CreatedAt":   m.CreatedAt,
	}
}

// Todos serializes the render of todos.
func Todos(m []*model.Todo) []map[string]any {
	todos := make([]map[string]any, len(m))
	for i, t := range m {
		todos[i] = Todo(t)
	}
	return todos
}

// Listing serializes the render of the paginated active todos.
func Listing(l *service.Listing) map[string]any {
	return map[string]any{
		"Count": len(l.Todos),
		"Todos": Todos(l.Items()),
		"Page": map[string]any{
			"Number":      l.Page.Number,
			"NumPages":    l.Page.NumPages,
			"HasPrevious": l.Page.HasPrevious(),
			"HasNext":     l.Page.HasNext(),
			"Previous":    l.Page.Previous(),
			"Next":        l.Page.Next(),
		},
	}
}
