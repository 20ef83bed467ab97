package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sort"

	"github.com/baechuer/paradies-dashboard/internal/domain"
	"github.com/baechuer/paradies-dashboard/internal/logbook"
	"github.com/baechuer/paradies-dashboard/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLogin       = "login.html"
	pageDashboard   = "dashboard.html"
	pageLogbook     = "logbook.html"
	pagePlaceholder = "placeholder.html"
)

// formFields are rendered next to their inputs; other keys are listed above
// the form.
var formFields = map[string]bool{"fullname": true, "email": true, "passwords": true}

var funcs = template.FuncMap{
	"otherErrors": func(v domain.ValidationErrors) []string {
		var keys []string
		for k := range v {
			if !formFields[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, v[k]...)
		}
		return out
	},
}

// Page is the data every template receives.
type Page struct {
	Title   string
	Nav     *Nav
	Notices []domain.Notice
	Body    any
}

// Nav is the navigation bar shown on authenticated pages.
type Nav struct {
	Brand   string
	Account string
	Links   []NavLink
}

type NavLink struct {
	Label string
	Href  string
}

type loginBody struct {
	Username string
	Error    string
}

type dashboardBody struct {
	Greeting string
	Items    []domain.CatalogItem
}

type logbookBody struct {
	Screen *logbook.Screen
}

type placeholderBody struct {
	Heading string
}

// Views renders the embedded page templates. Each page is parsed together
// with the shared layout.
type Views struct {
	pages map[string]*template.Template
}

func NewViews() (*Views, error) {
	v := &Views{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageLogin, pageDashboard, pageLogbook, pagePlaceholder} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render executes page into a buffer so a template failure never leaves a
// half-written response.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	t, ok := v.pages[name]
	if !ok {
		logger.Ctx(r.Context()).Error().Str("page", name).Msg("unknown_page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Str("page", name).Msg("render_failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// dashboardNav is the bar of the catalog, profile and settings pages.
func dashboardNav(ident domain.Identity) *Nav {
	return &Nav{
		Brand:   "PARA-DIES",
		Account: ident.DisplayName("Account"),
		Links:   []NavLink{{Label: "Logbook", Href: "/dashboard/logbook"}},
	}
}

// logbookNav is the bar of the record screen, whose account menu falls back
// to "User".
func logbookNav(ident domain.Identity) *Nav {
	return &Nav{
		Brand:   "Carhartt",
		Account: ident.DisplayName("User"),
		Links:   []NavLink{{Label: "Dashboard", Href: "/dashboard"}},
	}
}
