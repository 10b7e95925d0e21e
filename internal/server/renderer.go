package server

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templates embed.FS

const layout = "templates/layout.html"

// A renderer renders the HTML pages. Each page is parsed along the layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	names, err := fs.Glob(templates, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "could not list templates")
	}

	r := &renderer{
		pages: map[string]*template.Template{},
	}
	for _, name := range names {
		if name == layout {
			continue
		}

		page, err := template.New(path.Base(name)).ParseFS(templates, layout, name)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse template %s", name)
		}
		r.pages[path.Base(name)] = page
	}

	return r, nil
}

// Render implements echo.Renderer interface.
func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown template %s", name)
	}
	return page.ExecuteTemplate(w, "layout", data)
}
