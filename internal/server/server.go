package server

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/logger"
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/internal/server/middlewares"
	"github.com/mdouchement/todo/internal/server/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// LoginPath is the path where unauthenticated users are redirected.
const LoginPath = "/login"

// A Controller is an Iversion Of Control pattern used to init the server package.
type Controller struct {
	Version        string
	Database       database.Client
	Logger         logrus.FieldLogger
	NoRegistration bool
	CSRF           bool
	Metrics        bool
	// Session params
	SecureCookie          bool
	SessionSecret         []byte
	SessionExpirationTime time.Duration
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl Controller) *echo.Echo {
	if ctrl.Logger == nil {
		ctrl.Logger = logger.Discard()
	}

	renderer, err := newRenderer()
	if err != nil {
		panic(err) // Templates are embedded.
	}

	var metrics *middlewares.Metrics
	if ctrl.Metrics {
		metrics = middlewares.NewMetrics()
	}

	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.Renderer = renderer

	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.Gzip())
	engine.Use(middlewares.Logger(ctrl.Logger))
	engine.Use(metrics.Middleware())
	if ctrl.CSRF {
		engine.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "form:csrf",
			CookieName:     "todo_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   ctrl.SecureCookie,
			CookieSameSite: http.SameSiteLaxMode,
		}))
	}

	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler(ctrl.Logger)

	////////////
	// Router //
	////////////

	sessions := session.NewManager(
		ctrl.Database,
		ctrl.SessionSecret,
		ctrl.SessionExpirationTime,
	)
	restricted := middlewares.Session(sessions, LoginPath, ctrl.SecureCookie)

	// generic handlers
	//
	engine.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})
	if metrics != nil {
		engine.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}

	//
	// auth handlers
	//
	auth := &auth{
		db: ctrl.Database,
	}
	if !ctrl.NoRegistration {
		engine.GET("/register", auth.RegisterForm)
		engine.POST("/register", auth.Register)
	}

	//
	// session handlers
	//
	session := &sess{
		db:           ctrl.Database,
		m:            sessions,
		secure:       ctrl.SecureCookie,
		registration: !ctrl.NoRegistration,
	}
	engine.GET(LoginPath, session.LoginForm)
	engine.POST(LoginPath, session.Login)
	engine.POST("/logout", session.Logout, restricted)

	//
	// todo handlers
	//
	todo := &todo{
		db:      ctrl.Database,
		metrics: metrics,
	}
	engine.GET("/", todo.List, restricted)
	engine.POST("/", todo.Create, restricted)
	engine.POST("/todos/:pk/update", todo.Update, restricted)
	engine.POST("/todos/:pk/complete", todo.Complete, restricted)
	engine.POST("/todos/:pk/delete", todo.Delete, restricted)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

func currentUser(c echo.Context) *model.User {
	user, ok := c.Get(middlewares.CurrentUserContextKey).(*model.User)
	if ok {
		return user
	}
	return nil
}

func currentSession(c echo.Context) *model.Session {
	session, ok := c.Get(middlewares.CurrentSessionContextKey).(*model.Session)
	if ok {
		return session
	}
	return nil
}

// csrf returns the CSRF token of the request, empty when the protection is disabled.
func csrf(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// safeReferrer returns the listing URL the referer points to, or the listing root.
// Only the page number is kept from the referer.
func safeReferrer(referer, host string) string {
	u, err := url.Parse(referer)
	if err != nil || u.Path != "/" || u.User != nil {
		return "/"
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "/"
	}
	if u.Host != "" && u.Host != host {
		return "/"
	}

	page := u.Query().Get("page")
	if page == "" {
		return "/"
	}
	return "/?" + url.Values{"page": []string{page}}.Encode()
}

// safeNext returns the given path when it stays on this site, or the listing root.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return u.RequestURI()
}
