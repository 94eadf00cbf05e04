package views

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"

	"github.com/spec-kit/recommendation-console/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// LayoutName wraps every page.
const LayoutName = "layout"

// Layout carries the fields every page shares.
type Layout struct {
	Title string
	// Welcome is the header line; empty when nobody is logged in.
	Welcome string
}

// LoginPage renders the login form.
type LoginPage struct {
	Layout
	Username string
	Error    string
}

// HomePage renders the item list, the recommendation form and the board.
type HomePage struct {
	Layout
	ItemsAllowed bool
	Items        []domain.Item
	ItemsError   string

	FormAllowed bool
	Preferences string
	FormError   string

	Recommended []domain.Item
}

// DeniedPage renders a whole-route access denial.
type DeniedPage struct {
	Layout
}

// ErrorPage renders an unexpected failure.
type ErrorPage struct {
	Layout
	Status  int
	Code    string
	Message string
}

// New loads every embedded page into an html engine. Pages render inside
// LayoutName through its {{embed}} call; partials.html holds the shared
// denial blocks.
func New() (*html.Engine, error) {
	root, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(root), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	return engine, nil
}
