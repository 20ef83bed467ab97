package handlers

import (
	"net/http"

	"github.com/baechuer/paradies-dashboard/internal/catalog"
	"github.com/baechuer/paradies-dashboard/internal/flash"
	"github.com/baechuer/paradies-dashboard/internal/session"
)

// PageHandler serves the static authenticated pages.
type PageHandler struct {
	views        *Views
	secureCookie bool
}

func NewPageHandler(views *Views, secureCookie bool) *PageHandler {
	return &PageHandler{views: views, secureCookie: secureCookie}
}

// Dashboard shows the catalog greeting the signed-in user by name.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ident, _ := session.IdentityFrom(r.Context())
	h.views.Render(w, r, http.StatusOK, pageDashboard, Page{
		Title:   "PARA-DIES",
		Nav:     dashboardNav(ident),
		Notices: flash.ReadAndClear(w, r, h.secureCookie),
		Body: dashboardBody{
			Greeting: ident.DisplayName("Guest"),
			Items:    catalog.Items(),
		},
	})
}

func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.placeholder(w, r, "Profile")
}

func (h *PageHandler) Settings(w http.ResponseWriter, r *http.Request) {
	h.placeholder(w, r, "Settings")
}

func (h *PageHandler) placeholder(w http.ResponseWriter, r *http.Request, heading string) {
	ident, _ := session.IdentityFrom(r.Context())
	h.views.Render(w, r, http.StatusOK, pagePlaceholder, Page{
		Title: heading,
		Nav:   dashboardNav(ident),
		Body:  placeholderBody{Heading: heading},
	})
}
