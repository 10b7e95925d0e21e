package server_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/appleboy/gofight/v2"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/internal/server"
	"github.com/mdouchement/todo/internal/server/service"
	"github.com/mdouchement/todo/internal/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"
)

const password = "correct-horse-battery"

func TestRequestVersion(t *testing.T) {
	engine, _, r := setup(t)

	r.GET("/version").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.ParseBytes(r.Body.Bytes())
		if assert.NoError(t, err) {
			assert.Equal(t, "test", string(v.GetStringBytes("version")))
		}
	})
}

func TestRequestUnknownRoute(t *testing.T) {
	engine, _, r := setup(t)

	r.GET("/nowhere").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.Contains(t, r.Body.String(), "404 Not Found")
	})
}

func TestRestrictedRoutes(t *testing.T) {
	engine, _, r := setup(t)

	r.GET("/?page=2").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusFound, r.Code)
		assert.Equal(t, "/login?next=%2F%3Fpage%3D2", result(r).Header.Get("Location"))
	})

	for _, path := range []string{"/", "/todos/1/update", "/todos/1/complete", "/todos/1/delete", "/logout"} {
		r.POST(path).SetForm(gofight.H{"new-todo": "trololo"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusFound, r.Code, path)
			assert.True(t, strings.HasPrefix(result(r).Header.Get("Location"), "/login?next="), path)
		})
	}

	cookie := gofight.H{session.CookieName: "not-a-token"}
	r.GET("/").SetCookie(cookie).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusFound, r.Code)
		assert.Equal(t, "/login?next=%2F", result(r).Header.Get("Location"))

		cookies := result(r).Cookies()
		if assert.Len(t, cookies, 1) {
			assert.Equal(t, session.CookieName, cookies[0].Name)
			assert.Equal(t, "", cookies[0].Value)
			assert.Less(t, cookies[0].MaxAge, 0)
		}
	})
}

func TestMetrics(t *testing.T) {
	engine, _, r := setup(t)

	r.GET("/metrics").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})

	//

	engine, ctrl, r := setup(t, func(ctrl *server.Controller) {
		ctrl.Metrics = true
	})
	user := createUser(t, ctrl, "george")

	r.GET("/version").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})
	r.POST("/").SetCookie(login(t, ctrl, user)).SetForm(gofight.H{"new-todo": "buy milk"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusFound, r.Code)
	})

	r.GET("/metrics").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		body := r.Body.String()
		assert.Contains(t, body, `todo_http_requests_total{method="GET",path="/version",service="todo",status="200"} 1`)
		assert.Contains(t, body, `todo_http_requests_total{method="POST",path="/",service="todo",status="302"} 1`)
		assert.Contains(t, body, `todo_operations_total{operation="create",service="todo"} 1`)
	})
}

func TestCSRF(t *testing.T) {
	engine, ctrl, r := setup(t, func(ctrl *server.Controller) {
		ctrl.CSRF = true
	})
	createUser(t, ctrl, "george")

	var token string
	r.GET("/login").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		for _, cookie := range result(r).Cookies() {
			if cookie.Name == "todo_csrf" {
				token = cookie.Value
			}
		}
		if assert.NotEmpty(t, token) {
			assert.Contains(t, r.Body.String(), `name="csrf" value="`+token+`"`)
		}
	})

	form := gofight.H{
		"username": "george",
		"password": password,
		"csrf":     "forged",
	}
	r.POST("/login").SetCookie(gofight.H{"todo_csrf": token}).SetForm(form).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	form["csrf"] = token
	r.POST("/login").SetCookie(gofight.H{"todo_csrf": token}).SetForm(form).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusFound, r.Code)
		assert.Equal(t, "/", result(r).Header.Get("Location"))
	})
}

func TestSafeReferrer(t *testing.T) {
	tests := []struct {
		referer  string
		expected string
	}{
		{referer: "", expected: "/"},
		{referer: "/", expected: "/"},
		{referer: "/?page=3", expected: "/?page=3"},
		{referer: "/?page=3&foo=bar", expected: "/?page=3"},
		{referer: "http://todo.lan/?page=2", expected: "/?page=2"},
		{referer: "https://todo.lan/", expected: "/"},
		{referer: "https://evil.lan/?page=2", expected: "/"},
		{referer: "//evil.lan/?page=2", expected: "/"},
		{referer: "javascript:alert(1)", expected: "/"},
		{referer: "/register", expected: "/"},
		{referer: "/todos/1/update", expected: "/"},
		{referer: "http://user@todo.lan/?page=2", expected: "/"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, server.SafeReferrer(test.referer, "todo.lan"), test.referer)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next     string
		expected string
	}{
		{next: "", expected: "/"},
		{next: "/", expected: "/"},
		{next: "/?page=2", expected: "/?page=2"},
		{next: "/register", expected: "/register"},
		{next: "//evil.lan", expected: "/"},
		{next: "/\\evil.lan", expected: "/"},
		{next: "https://evil.lan/", expected: "/"},
		{next: "evil.lan", expected: "/"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, server.SafeNext(test.next), test.next)
	}
}

//
//
//

func setup(t *testing.T, configure ...func(ctrl *server.Controller)) (*echo.Echo, server.Controller, *gofight.RequestConfig) {
	db, err := database.StormOpen(filepath.Join(t.TempDir(), "todo.db"), "msgpack")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	ctrl := server.Controller{
		Version:               "test",
		Database:              db,
		SessionSecret:         []byte("00000000000000000000000000000000"),
		SessionExpirationTime: 24 * time.Hour,
	}
	for _, fn := range configure {
		fn(&ctrl)
	}

	return server.EchoEngine(ctrl), ctrl, gofight.New()
}

func createUser(t *testing.T, ctrl server.Controller, username string) *model.User {
	user, err := service.NewUser(ctrl.Database).Register(service.RegisterParams{
		Username:             username,
		Password:             password,
		PasswordConfirmation: password,
	})
	if err != nil {
		t.Fatal(err)
	}
	return user
}

// login returns the cookies of an authenticated user.
func login(t *testing.T, ctrl server.Controller, user *model.User) gofight.H {
	m := session.NewManager(ctrl.Database, ctrl.SessionSecret, ctrl.SessionExpirationTime)

	s, err := m.Generate(user, "gofight")
	if err != nil {
		t.Fatal(err)
	}

	token, err := m.Token(s)
	if err != nil {
		t.Fatal(err)
	}

	return gofight.H{session.CookieName: token}
}

// result returns the response recorded by gofight.
func result(r gofight.HTTPResponse) *http.Response {
	return (*httptest.ResponseRecorder)(r).Result()
}

func createTodo(t *testing.T, ctrl server.Controller, user *model.User, name string) *model.Todo {
	todo, err := service.NewTodo(ctrl.Database).Create(user.ID, name)
	if err != nil {
		t.Fatal(err)
	}
	return todo
}
