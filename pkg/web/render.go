package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"cso2web/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is the model every page template renders from.
type pageData struct {
	User          *models.User
	PlayersOnline int
	MapImage      string
	Status        string
	Error         string
}

type renderer struct {
	templates *template.Template
}

func newRenderer() (*renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &renderer{templates: templates}, nil
}

// Render implements echo.Renderer over the embedded page templates.
func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name+".html", data)
}
