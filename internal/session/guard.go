package session

import (
	"context"
	"net/http"

	"github.com/baechuer/paradies-dashboard/internal/domain"
	"github.com/baechuer/paradies-dashboard/internal/logger"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	bearerKey
)

// Guard admits a request only when the store holds a credential that
// decodes; anything else is redirected to loginPath without an identity
// being set. The check runs on every request; nothing is cached between
// navigations.
func Guard(store Store, dec *Decoder, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			stored, ok := store.Get(r)
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			token := ExtractToken(stored)
			ident, err := dec.Decode(token)
			if err != nil {
				logger.Ctx(r.Context()).Debug().Err(err).Msg("session_rejected")
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), ident, token)))
		})
	}
}

// NewContext attaches the decoded identity and its bearer credential.
func NewContext(ctx context.Context, ident domain.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityKey, ident)
	return context.WithValue(ctx, bearerKey, token)
}

func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(domain.Identity)
	return ident, ok
}

func BearerFrom(ctx context.Context) string {
	token, _ := ctx.Value(bearerKey).(string)
	return token
}
