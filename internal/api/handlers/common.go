package handlers

import (
	"net/http"

	"github.com/baechuer/paradies-dashboard/internal/logger"
	"github.com/baechuer/paradies-dashboard/internal/session"
	"github.com/baechuer/paradies-dashboard/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

const maxFormBytes = 64 << 10

// decodeForm reads an urlencoded body into v. Keys v does not declare are
// rejected.
func decodeForm(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return render.DecodeForm(r.Body, v)
}

// screenKey derives the logbook state key from the session credential, so
// each session has its own screen and the raw token is never used as a key.
func screenKey(r *http.Request) string {
	return screenKeyFor(session.BearerFrom(r.Context()))
}

func screenKeyFor(token string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(token)).String()
}

func serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger.Ctx(r.Context()).Error().Err(err).Msg(msg)
	http.Error(w, "Internal Server Error (request "+middleware.GetRequestID(r.Context())+")", http.StatusInternalServerError)
}
