package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baechuer/paradies-dashboard/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("session: signature verification needs a secret")
	ErrInvalidToken  = errors.New("session: invalid token")
)

// usernameClaims are consulted in order for the display name.
var usernameClaims = []string{"username", "name", "preferred_username", "email"}

// Decoder turns a stored credential into an Identity.
//
// With verification on, the HMAC signature and the time-based claims are
// checked against the shared secret. With it off the payload is only
// decoded; that is advisory and cannot be relied on for access control.
type Decoder struct {
	secret []byte
	verify bool
	parser *jwt.Parser
}

func NewDecoder(secret string, verify bool) (*Decoder, error) {
	if verify && secret == "" {
		return nil, ErrMissingSecret
	}
	return &Decoder{
		secret: []byte(secret),
		verify: verify,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})),
	}, nil
}

// Verifies reports whether signatures are checked.
func (d *Decoder) Verifies() bool {
	return d.verify
}

func (d *Decoder) Decode(token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if d.verify {
		parsed, err := d.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return d.secret, nil
		})
		if err != nil || !parsed.Valid {
			return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
			return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	return identityFromClaims(claims), nil
}

func identityFromClaims(claims jwt.MapClaims) domain.Identity {
	var id domain.Identity
	for _, key := range usernameClaims {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			id.Username = strings.TrimSpace(v)
			break
		}
	}
	for _, key := range []string{"sub", "uid", "id"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				id.Subject = v
			}
		case float64:
			id.Subject = fmt.Sprintf("%.0f", v)
		}
		if id.Subject != "" {
			break
		}
	}
	return id
}
