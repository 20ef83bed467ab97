package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/baechuer/paradies-dashboard/internal/downstream"
	"github.com/baechuer/paradies-dashboard/internal/logger"
	"github.com/baechuer/paradies-dashboard/internal/session"
)

// LoginAPI exchanges credentials for a session token.
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// ScreenForgetter drops per-session screen state when the session ends.
type ScreenForgetter interface {
	Forget(ctx context.Context, key string) error
}

type AuthHandler struct {
	api     LoginAPI
	store   session.Store
	dec     *session.Decoder
	screens ScreenForgetter
	views   *Views
}

func NewAuthHandler(api LoginAPI, store session.Store, dec *session.Decoder, screens ScreenForgetter, views *Views) *AuthHandler {
	return &AuthHandler{api: api, store: store, dec: dec, screens: screens, views: views}
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// LoginPage shows the sign-in form, or sends a signed-in user on to the
// dashboard.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if stored, ok := h.store.Get(r); ok {
		if _, err := h.dec.Decode(session.ExtractToken(stored)); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}
	h.renderLogin(w, r, http.StatusOK, loginBody{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := decodeForm(w, r, &form); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, loginBody{Error: "Invalid login form"})
		return
	}
	form.Username = strings.TrimSpace(form.Username)
	if form.Username == "" || form.Password == "" {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, loginBody{
			Username: form.Username,
			Error:    "Username and password are required",
		})
		return
	}

	token, err := h.api.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("login_failed")
		status := http.StatusBadGateway
		msg := "Login failed, please try again"
		if errors.Is(err, downstream.ErrUnauthorized) {
			status = http.StatusUnauthorized
			msg = downstream.UserMessage(err, "Invalid username or password")
		} else {
			var ve *downstream.ValidationError
			if errors.As(err, &ve) {
				status = http.StatusUnprocessableEntity
				msg = downstream.UserMessage(err, "Invalid username or password")
			}
		}
		h.renderLogin(w, r, status, loginBody{Username: form.Username, Error: msg})
		return
	}

	// A token the guard would reject is not worth storing.
	if _, err := h.dec.Decode(token); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("login_token_rejected")
		h.renderLogin(w, r, http.StatusBadGateway, loginBody{Username: form.Username, Error: "Login failed, please try again"})
		return
	}

	if err := h.store.Set(w, r, token); err != nil {
		serverError(w, r, err, "session_store_failed")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout removes the stored credential and the session's screen state, then
// returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if stored, ok := h.store.Get(r); ok && h.screens != nil {
		if token := session.ExtractToken(stored); token != "" {
			if err := h.screens.Forget(r.Context(), screenKeyFor(token)); err != nil {
				logger.Ctx(r.Context()).Warn().Err(err).Msg("screen_forget_failed")
			}
		}
	}
	if err := h.store.Clear(w, r); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("session_clear_failed")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, body loginBody) {
	h.views.Render(w, r, status, pageLogin, Page{Title: "Login", Body: body})
}
