package service

import (
	"strings"

	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/internal/paginator"
	"github.com/mdouchement/todo/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// A TodoService is a service used to manage the todos of a user.
	// Every operation is scoped to the given user.
	TodoService interface {
		// List returns the active todos of the user and the requested page of them.
		List(userID int, page string) (*Listing, error)
		// Create adds a new active todo.
		Create(userID int, name string) (*model.Todo, error)
		// Find returns the user's todo or a not found error.
		Find(userID, id int) (*model.Todo, error)
		// Rename overwrites the name of the todo.
		Rename(todo *model.Todo, name string) error
		// Complete marks the todo as completed.
		Complete(todo *model.Todo) error
		// Delete removes permanently the todo.
		Delete(todo *model.Todo) error
	}

	// A Listing is a paginated list of active todos.
	Listing struct {
		// All the active todos, newest first.
		Todos []*model.Todo
		Page  paginator.Page
	}

	todoParams struct {
		Name string `form:"name" validate:"required,max=255"`
	}

	todoService struct {
		db      database.Client
		perPage int
	}
)

// NewTodo returns a new TodoService.
func NewTodo(db database.Client) TodoService {
	return &todoService{
		db:      db,
		perPage: paginator.DefaultPerPage,
	}
}

// Items returns the todos of the current page.
func (l *Listing) Items() []*model.Todo {
	return l.Todos[l.Page.Start:l.Page.End]
}

func (s *todoService) List(userID int, page string) (*Listing, error) {
	todos, err := s.db.FindTodosByUserID(userID, false)
	if err != nil {
		return nil, errors.Wrap(err, "could not list todos")
	}

	return &Listing{
		Todos: todos,
		Page:  paginator.New(len(todos), s.perPage).GetPage(page),
	}, nil
}

func (s *todoService) Create(userID int, name string) (*model.Todo, error) {
	name, err := s.name(name)
	if err != nil {
		return nil, err
	}

	todo := model.NewTodo(userID, name)
	err = s.db.Save(todo)
	return todo, errors.Wrap(err, "could not create todo")
}

func (s *todoService) Find(userID, id int) (*model.Todo, error) {
	todo, err := s.db.FindTodoByUserID(id, userID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, sferror.NotFound("No todo matches the given query.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return todo, nil
}

func (s *todoService) Rename(todo *model.Todo, name string) error {
	name, err := s.name(name)
	if err != nil {
		return err
	}

	todo.Name = name
	return errors.Wrap(s.db.Save(todo), "could not update todo")
}

func (s *todoService) Complete(todo *model.Todo) error {
	todo.Complete()
	return errors.Wrap(s.db.Save(todo), "could not complete todo")
}

func (s *todoService) Delete(todo *model.Todo) error {
	return errors.Wrap(s.db.Delete(todo), "could not delete todo")
}

// name trims and validates a todo name.
func (s *todoService) name(name string) (string, error) {
	params := todoParams{Name: strings.TrimSpace(name)}

	if err := check(params); err != nil {
		if verr, ok := err.(*sferror.ValidationError); ok {
			return "", sferror.Invalid("Invalid todo name. " + verr.Fields["name"])
		}
		return "", err
	}
	return params.Name, nil
}
