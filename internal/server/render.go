package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/base.html"

// Page template names.
const (
	pageIndex       = "index"
	pagePostDetails = "post-details"
	pagePostsList   = "posts-list"
	pageContacts    = "contacts"
	pageNotFound    = "404"
	pageServerError = "500"
)

var templateFuncs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
	"capitalize": func(s string) string {
		if s == "" {
			return ""
		}
		runes := []rune(s)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	},
	"tagURL": func(title string) string {
		return "/tags/" + url.PathEscape(title)
	},
	"postURL": func(slug string) string {
		return "/posts/" + url.PathEscape(slug)
	},
}

// Renderer is a fiber.Views engine over the embedded page templates.
// Every page is parsed together with the shared layout.
type Renderer struct {
	fsys  fs.FS
	pages map[string]*template.Template
}

// NewRenderer returns a Renderer reading the embedded templates.
func NewRenderer() *Renderer {
	return &Renderer{fsys: templateFS}
}

// Load parses the layout and every page template.
func (r *Renderer) Load() error {
	files, err := fs.Glob(r.fsys, "templates/*.html")
	if err != nil {
		return err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(path.Base(layoutFile)).Funcs(templateFuncs).ParseFS(r.fsys, layoutFile, file)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	r.pages = pages
	return nil
}

// Render executes the named page into w. The page is rendered into a buffer
// first so a failing template never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	if r.pages == nil {
		if err := r.Load(); err != nil {
			return err
		}
	}
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", binding); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
