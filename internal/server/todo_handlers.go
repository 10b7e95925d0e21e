package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/internal/server/middlewares"
	"github.com/mdouchement/todo/internal/server/serializer"
	"github.com/mdouchement/todo/internal/server/service"
	"github.com/mdouchement/todo/internal/sferror"
)

// todo contains all todo handlers.
type todo struct {
	db      database.Client
	metrics *middlewares.Metrics
}

///// List
////
//

// List renders the requested page of the current user's active todos.
func (h *todo) List(c echo.Context) error {
	user := currentUser(c)

	listing, err := service.NewTodo(h.db).List(user.ID, c.QueryParam("page"))
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "home.html", serializer.Global(user, csrf(c), serializer.Listing(listing)))
}

///// Create
////
//

// Create adds a todo to the current user's list.
func (h *todo) Create(c echo.Context) error {
	user := currentUser(c)

	_, err := service.NewTodo(h.db).Create(user.ID, c.FormValue("new-todo"))
	if err != nil {
		return err
	}
	h.metrics.Operation("create")

	return c.Redirect(http.StatusFound, "/")
}

///// Update
////
//

// Update renames a todo of the current user.
func (h *todo) Update(c echo.Context) error {
	service := service.NewTodo(h.db)

	todo, err := todoFromParam(c, service)
	if err != nil {
		return err
	}

	// The field is named after the todo so each row of the listing has its own input.
	name := c.FormValue("todo_" + strconv.Itoa(todo.ID))
	if err = service.Rename(todo, name); err != nil {
		return err
	}
	h.metrics.Operation("update")

	return c.Redirect(http.StatusFound, safeReferrer(c.Request().Referer(), c.Request().Host))
}

///// Complete
////
//

// Complete marks a todo of the current user as completed.
func (h *todo) Complete(c echo.Context) error {
	service := service.NewTodo(h.db)

	todo, err := todoFromParam(c, service)
	if err != nil {
		return err
	}

	if err = service.Complete(todo); err != nil {
		return err
	}
	h.metrics.Operation("complete")

	return c.Redirect(http.StatusFound, safeReferrer(c.Request().Referer(), c.Request().Host))
}

///// Delete
////
//

// Delete removes a todo of the current user.
func (h *todo) Delete(c echo.Context) error {
	service := service.NewTodo(h.db)

	todo, err := todoFromParam(c, service)
	if err != nil {
		return err
	}

	if err = service.Delete(todo); err != nil {
		return err
	}
	h.metrics.Operation("delete")

	return c.Redirect(http.StatusFound, safeReferrer(c.Request().Referer(), c.Request().Host))
}

// todoFromParam returns the current user's todo identified by the pk path param.
func todoFromParam(c echo.Context, s service.TodoService) (*model.Todo, error) {
	id, err := strconv.Atoi(c.Param("pk"))
	if err != nil || id < 1 {
		return nil, sferror.NotFound("No todo matches the given query.")
	}

	return s.Find(currentUser(c).ID, id)
}
