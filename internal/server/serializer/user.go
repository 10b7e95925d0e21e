package serializer

import "github.com/mdouchement/todo/internal/model"

// User serializes the render of a user.
func User(m *model.User) map[string]any {
	return map[string]any{
		"ID":       m.ID,
		"Username": m.Username,
	}
}
