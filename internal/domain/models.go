package domain

import "strings"

// UserRecord is owned by the user-management API. ID is assigned by the
// server and never changes; Password is write-only and is never rendered.
type UserRecord struct {
	ID       int64  `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Draft is the editable subset of a UserRecord staged while a create or
// update dialog is open. The API expects the password under "passwords".
type Draft struct {
	Fullname  string `json:"fullname" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Passwords string `json:"passwords,omitempty" validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (d Draft) Trimmed() Draft {
	return Draft{
		Fullname:  strings.TrimSpace(d.Fullname),
		Email:     strings.TrimSpace(d.Email),
		Passwords: d.Passwords,
	}
}

// DraftFrom pre-fills a draft from an existing record. The password is left
// blank: an empty password on update keeps the stored one.
func DraftFrom(rec UserRecord) Draft {
	return Draft{Fullname: rec.Fullname, Email: rec.Email}
}

// ValidationErrors maps a field name to its human-readable messages.
type ValidationErrors map[string][]string

func (v ValidationErrors) Has(field string) bool {
	return len(v[field]) > 0
}

// First returns the first message for field, or "".
func (v ValidationErrors) First(field string) string {
	if msgs := v[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Identity is the read-only projection of a session token.
type Identity struct {
	Subject  string
	Username string
}

// DisplayName returns the username or fallback when the token carried none.
func (i Identity) DisplayName(fallback string) string {
	if name := strings.TrimSpace(i.Username); name != "" {
		return name
	}
	return fallback
}

type CatalogItem struct {
	Image       string
	Title       string
	Description string
}

// Dialog names the modal currently open on the logbook screen.
type Dialog string

const (
	DialogNone   Dialog = ""
	DialogCreate Dialog = "create"
	DialogRead   Dialog = "read"
	DialogUpdate Dialog = "update"
	DialogDelete Dialog = "delete"
)

// ParseDialog maps a query value to a Dialog; unknown values close the dialog.
func ParseDialog(s string) Dialog {
	switch d := Dialog(strings.ToLower(strings.TrimSpace(s))); d {
	case DialogCreate, DialogRead, DialogUpdate, DialogDelete:
		return d
	default:
		return DialogNone
	}
}

// APIError covers the error bodies the user-management API is known to send:
// a flat message, a field-keyed validation map, or a coded error envelope.
type APIError struct {
	Message string           `json:"message,omitempty"`
	Errors  ValidationErrors `json:"errors,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// BestMessage returns the most specific message carried by the body.
func (e APIError) BestMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return ""
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a one-shot message shown after a mutation.
type Notice struct {
	Kind  NoticeKind `json:"kind"`
	Title string     `json:"title"`
	Text  string     `json:"text"`
}
