package handlers

import (
	"net/http"
	"strconv"

	"github.com/baechuer/paradies-dashboard/internal/domain"
	"github.com/baechuer/paradies-dashboard/internal/flash"
	"github.com/baechuer/paradies-dashboard/internal/logbook"
	"github.com/baechuer/paradies-dashboard/internal/session"
	"github.com/go-chi/chi/v5"
)

const logbookPath = "/dashboard/logbook"

type LogbookHandler struct {
	svc          *logbook.Service
	views        *Views
	secureCookie bool
}

func NewLogbookHandler(svc *logbook.Service, views *Views, secureCookie bool) *LogbookHandler {
	return &LogbookHandler{svc: svc, views: views, secureCookie: secureCookie}
}

type draftForm struct {
	Fullname  string `form:"fullname"`
	Email     string `form:"email"`
	Passwords string `form:"passwords"`
}

func (f draftForm) draft() domain.Draft {
	return domain.Draft{Fullname: f.Fullname, Email: f.Email, Passwords: f.Passwords}
}

type deleteForm struct {
	Confirm string `form:"confirm"`
}

// Show mounts the screen and opens the dialog named by ?dialog=&id=.
func (h *LogbookHandler) Show(w http.ResponseWriter, r *http.Request) {
	var buf flash.Buffer
	c := h.caller(r, &buf)
	ctx := r.Context()

	sc, err := h.svc.Mount(ctx, c)
	if err != nil {
		serverError(w, r, err, "logbook_mount_failed")
		return
	}

	q := r.URL.Query()
	dialog := domain.ParseDialog(q.Get("dialog"))
	id, idErr := strconv.ParseInt(q.Get("id"), 10, 64)

	switch {
	case dialog == domain.DialogCreate:
		sc, err = h.svc.OpenCreate(ctx, c)
	case dialog == domain.DialogNone || idErr != nil:
		// list only
	case dialog == domain.DialogRead:
		sc, err = h.svc.ViewRecord(ctx, c, id)
	case dialog == domain.DialogUpdate:
		sc, err = h.svc.OpenUpdate(ctx, c, id)
	case dialog == domain.DialogDelete:
		sc, err = h.svc.RequestDelete(ctx, c, id)
	}
	if err != nil {
		serverError(w, r, err, "logbook_dialog_failed")
		return
	}

	notices := append(flash.ReadAndClear(w, r, h.secureCookie), buf.Notices()...)
	h.render(w, r, http.StatusOK, sc, notices)
}

func (h *LogbookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form draftForm
	if err := decodeForm(w, r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var buf flash.Buffer
	sc, err := h.svc.CreateRecord(r.Context(), h.caller(r, &buf), form.draft())
	if err != nil {
		serverError(w, r, err, "logbook_create_failed")
		return
	}
	h.afterSubmit(w, r, sc, &buf)
}

func (h *LogbookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var form draftForm
	if err := decodeForm(w, r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var buf flash.Buffer
	sc, err := h.svc.UpdateRecord(r.Context(), h.caller(r, &buf), id, form.draft())
	if err != nil {
		serverError(w, r, err, "logbook_update_failed")
		return
	}
	h.afterSubmit(w, r, sc, &buf)
}

// Delete removes the record only when the confirmation form says "yes".
func (h *LogbookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var form deleteForm
	if err := decodeForm(w, r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var buf flash.Buffer
	if _, err := h.svc.DeleteRecord(r.Context(), h.caller(r, &buf), id, form.Confirm == "yes"); err != nil {
		serverError(w, r, err, "logbook_delete_failed")
		return
	}
	flash.Write(w, h.secureCookie, buf.Notices())
	http.Redirect(w, r, logbookPath, http.StatusSeeOther)
}

func (h *LogbookHandler) Close(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.CloseDialog(r.Context(), h.caller(r, nil)); err != nil {
		serverError(w, r, err, "logbook_close_failed")
		return
	}
	http.Redirect(w, r, logbookPath, http.StatusSeeOther)
}

// afterSubmit redirects when the dialog closed, otherwise re-renders it in
// place with its errors and notices.
func (h *LogbookHandler) afterSubmit(w http.ResponseWriter, r *http.Request, sc *logbook.Screen, buf *flash.Buffer) {
	if sc.Dialog == domain.DialogNone {
		flash.Write(w, h.secureCookie, buf.Notices())
		http.Redirect(w, r, logbookPath, http.StatusSeeOther)
		return
	}

	status := http.StatusOK
	if len(sc.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	h.render(w, r, status, sc, buf.Notices())
}

func (h *LogbookHandler) render(w http.ResponseWriter, r *http.Request, status int, sc *logbook.Screen, notices []domain.Notice) {
	ident, _ := session.IdentityFrom(r.Context())
	h.views.Render(w, r, status, pageLogbook, Page{
		Title:   "The Record Book",
		Nav:     logbookNav(ident),
		Notices: notices,
		Body:    logbookBody{Screen: sc},
	})
}

func (h *LogbookHandler) caller(r *http.Request, n logbook.Notifier) logbook.Caller {
	return logbook.Caller{
		Key:    screenKey(r),
		Bearer: session.BearerFrom(r.Context()),
		Notify: n,
	}
}

func recordID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}
