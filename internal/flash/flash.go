// Package flash carries one-time notices across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/baechuer/paradies-dashboard/internal/domain"
)

// CookieName is the cookie holding pending notices.
const CookieName = "dashboard_flash"

// Bounds that keep the cookie under the common 4KB browser limit.
const (
	maxNotices     = 4
	maxTitleBytes  = 128
	maxTextBytes   = 512
	maxCookieValue = 3800
)

// Buffer collects notices raised while a request is handled. The handler
// either renders them inline or persists them with Write before redirecting.
type Buffer struct {
	notices []domain.Notice
}

func (b *Buffer) Notify(n domain.Notice) {
	if normalized, ok := normalize(n); ok {
		b.notices = append(b.notices, normalized)
	}
}

func (b *Buffer) Notices() []domain.Notice {
	return b.notices
}

// Write stores notices for the next page render. Nothing is written when
// notices is empty.
func Write(w http.ResponseWriter, secure bool, notices []domain.Notice) {
	if w == nil || len(notices) == 0 {
		return
	}
	if len(notices) > maxNotices {
		notices = notices[len(notices)-maxNotices:]
	}
	var value string
	for len(notices) > 0 {
		payload, err := json.Marshal(notices)
		if err != nil {
			return
		}
		value = base64.RawURLEncoding.EncodeToString(payload)
		if len(value) <= maxCookieValue {
			break
		}
		// Oldest notices go first.
		notices = notices[1:]
	}
	if len(notices) == 0 {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadAndClear returns the pending notices and expires the cookie. A
// malformed cookie is cleared and yields nothing.
func ReadAndClear(w http.ResponseWriter, r *http.Request, secure bool) []domain.Notice {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	Clear(w, secure)
	return decode(cookie.Value)
}

func Clear(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func decode(raw string) []domain.Notice {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var notices []domain.Notice
	if err := json.Unmarshal(decoded, &notices); err != nil {
		return nil
	}

	out := notices[:0]
	for _, n := range notices {
		if normalized, ok := normalize(n); ok {
			out = append(out, normalized)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalize(n domain.Notice) (domain.Notice, bool) {
	n.Text = truncate(strings.TrimSpace(n.Text), maxTextBytes)
	if n.Text == "" {
		return domain.Notice{}, false
	}
	n.Title = truncate(strings.TrimSpace(n.Title), maxTitleBytes)
	n.Kind = domain.NoticeKind(strings.ToLower(strings.TrimSpace(string(n.Kind))))
	switch n.Kind {
	case domain.NoticeSuccess, domain.NoticeError:
		return n, true
	default:
		return domain.Notice{}, false
	}
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	s = s[:limit]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
