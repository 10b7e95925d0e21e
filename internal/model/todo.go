package model

// A Todo represents a to-do item owned by a single user.
type Todo struct {
	Base `msgpack:",inline" storm:"inline"`

	UserID      int    `json:"user_id"      msgpack:"user_id"      storm:"index"`
	Name        string `json:"name"         msgpack:"name"`
	IsCompleted bool   `json:"is_completed" msgpack:"is_completed" storm:"index"`
}

// NewTodo returns an active item owned by the given user.
func NewTodo(userID int, name string) *Todo {
	return &Todo{
		UserID: userID,
		Name:   name,
	}
}

// Complete marks the item as done. There is no way back.
func (t *Todo) Complete() {
	t.IsCompleted = true
}
