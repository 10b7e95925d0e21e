package serializer

import "github.com/mdouchement/todo/internal/model"

// Global serialize the given render to the general template data format.
func Global(user *model.User, csrf string, render map[string]any) map[string]any {
	data := map[string]any{
		"CSRF": csrf,
	}
	if user != nil {
		data["CurrentUser"] = User(user)
	}

	for k, v := range render {
		data[k] = v
	}
	return data
}
