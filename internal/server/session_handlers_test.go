package server_test

import (
	"net/http"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/mdouchement/todo/internal/server"
	"github.com/mdouchement/todo/internal/server/session"
	"github.com/stretchr/testify/assert"
)

func TestRequestLogin(t *testing.T) {
	engine, ctrl, r := setup(t)
	user := createUser(t, ctrl, "george")

	r.GET("/login?next=%2F%3Fpage%3D2").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.Contains(t, r.Body.String(), `name="next" value="/?page=2"`)
	})

	r.POST("/login").
		SetForm(gofight.H{"username": "george", "password": "wrong-password", "next": "/?page=2"}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.Contains(t, r.Body.String(), "Please enter a correct username and password.")
			assert.Empty(t, result(r).Cookies())
		})

	r.POST("/login").
		SetForm(gofight.H{"username": "nobody", "password": password}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)
			assert.Contains(t, r.Body.String(), "Please enter a correct username and password.")
		})

	var cookie gofight.H
	r.POST("/login").
		SetHeader(gofight.H{"User-Agent": "gofight"}).
		SetForm(gofight.H{"username": "george", "password": password, "next": "/?page=2"}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusFound, r.Code)
			assert.Equal(t, "/?page=2", result(r).Header.Get("Location"))

			cookies := result(r).Cookies()
			if assert.Len(t, cookies, 1) {
				assert.Equal(t, session.CookieName, cookies[0].Name)
				assert.True(t, cookies[0].HttpOnly)
				assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
				cookie = gofight.H{cookies[0].Name: cookies[0].Value}
			}
		})

	sessions, err := ctrl.Database.FindSessionsByUserID(user.ID)
	if assert.NoError(t, err) && assert.Len(t, sessions, 1) {
		assert.Equal(t, "gofight", sessions[0].UserAgent)
	}

	r.GET("/").SetCookie(cookie).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})

	// Open redirect
	r.POST("/login").
		SetForm(gofight.H{"username": "george", "password": password, "next": "https://evil.lan/"}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusFound, r.Code)
			assert.Equal(t, "/", result(r).Header.Get("Location"))
		})
}

func TestRequestLogout(t *testing.T) {
	engine, ctrl, r := setup(t)
	user := createUser(t, ctrl, "george")
	cookie := login(t, ctrl, user)

	r.POST("/logout").SetCookie(cookie).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusFound, r.Code)
		assert.Equal(t, server.LoginPath, result(r).Header.Get("Location"))

		cookies := result(r).Cookies()
		if assert.Len(t, cookies, 1) {
			assert.Equal(t, session.CookieName, cookies[0].Name)
			assert.Less(t, cookies[0].MaxAge, 0)
		}
	})

	sessions, err := ctrl.Database.FindSessionsByUserID(user.ID)
	assert.NoError(t, err)
	assert.Empty(t, sessions)

	// The token is revoked.
	r.GET("/").SetCookie(cookie).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusFound, r.Code)
		assert.Equal(t, "/login?next=%2F", result(r).Header.Get("Location"))
	})
}

func TestRequestLoginEmptyForm(t *testing.T) {
	engine, _, r := setup(t)

	r.POST("/login").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.Contains(t, r.Body.String(), `<p class="error" data-field="username">This field is required.</p>`)
		assert.Empty(t, result(r).Cookies())
	})
}
