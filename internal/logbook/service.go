// Package logbook implements the record management screen: listing user
// records and creating, viewing, updating and deleting them through the
// user-management API.
package logbook

import (
	"context"
	"errors"
	"net/http"

	"github.com/baechuer/paradies-dashboard/internal/domain"
	"github.com/baechuer/paradies-dashboard/internal/downstream"
	"github.com/baechuer/paradies-dashboard/internal/logger"
	"github.com/baechuer/paradies-dashboard/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const genericErrorText = "An error occurred"

// UserAPI is the backend collaborator.
type UserAPI interface {
	List(ctx context.Context, bearer string) ([]domain.UserRecord, error)
	Create(ctx context.Context, bearer string, draft domain.Draft) (*domain.UserRecord, error)
	Update(ctx context.Context, bearer string, id int64, draft domain.Draft) (*domain.UserRecord, error)
	Delete(ctx context.Context, bearer string, id int64) error
}

// Notifier shows the outcome of a mutation to the user.
type Notifier interface {
	Notify(n domain.Notice)
}

// Caller identifies the screen instance an operation runs against.
type Caller struct {
	// Key selects the stored screen state; one per session.
	Key string
	// Bearer is sent to the API as the credential.
	Bearer string
	Notify Notifier
}

func (c Caller) success(title, text string) {
	if c.Notify != nil {
		c.Notify.Notify(domain.Notice{Kind: domain.NoticeSuccess, Title: title, Text: text})
	}
}

func (c Caller) failure(err error) {
	if c.Notify != nil {
		c.Notify.Notify(domain.Notice{
			Kind:  domain.NoticeError,
			Title: "Error",
			Text:  downstream.UserMessage(err, genericErrorText),
		})
	}
}

// Service runs the logbook operations against the API and the state store.
type Service struct {
	api    UserAPI
	states StateStore
}

// NewService returns a Service backed by api and states.
func NewService(api UserAPI, states StateStore) *Service {
	return &Service{api: api, states: states}
}

// Mount starts a fresh view of the screen: dialogs closed and the list
// re-fetched. The previous list survives a failed fetch.
func (s *Service) Mount(ctx context.Context, c Caller) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.mount", func(ctx context.Context, sc *Screen) {
		sc.closeDialog()
		s.refresh(ctx, c, sc)
	})
}

// ListRecords re-fetches the list without touching dialog state.
func (s *Service) ListRecords(ctx context.Context, c Caller) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.list", func(ctx context.Context, sc *Screen) {
		s.refresh(ctx, c, sc)
	})
}

func (s *Service) OpenCreate(ctx context.Context, c Caller) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.open_create", func(_ context.Context, sc *Screen) {
		sc.closeDialog()
		sc.Dialog = domain.DialogCreate
	})
}

// CreateRecord submits draft. On any failure the create dialog stays open:
// field errors are shown inline, everything else as an error notice.
func (s *Service) CreateRecord(ctx context.Context, c Caller, draft domain.Draft) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.create", func(ctx context.Context, sc *Screen) {
		sc.Dialog = domain.DialogCreate
		sc.Selected = nil
		sc.Draft = draft.Trimmed()
		sc.Errors = nil

		if verrs := validateDraft(sc.Draft, false); verrs != nil {
			sc.Errors = verrs
			return
		}

		if _, err := s.api.Create(ctx, c.Bearer, sc.Draft); err != nil {
			s.submitFailed(ctx, c, sc, "create", err)
			return
		}

		c.success("Success", "User created successfully")
		s.refresh(ctx, c, sc)
		sc.closeDialog()
	})
}

// ViewRecord opens the read-only detail dialog for id. No network call is
// made; an id missing from the current list opens an empty dialog.
func (s *Service) ViewRecord(ctx context.Context, c Caller, id int64) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.view", func(_ context.Context, sc *Screen) {
		sc.closeDialog()
		sc.Dialog = domain.DialogRead
		if rec, ok := sc.find(id); ok {
			sc.Selected = &rec
		}
	})
}

// OpenUpdate opens the update dialog with the draft pre-filled from the
// record. The password is left blank.
func (s *Service) OpenUpdate(ctx context.Context, c Caller, id int64) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.open_update", func(_ context.Context, sc *Screen) {
		sc.closeDialog()
		rec, ok := sc.find(id)
		if !ok {
			c.failure(&downstream.StatusError{StatusCode: http.StatusNotFound, Code: "resource_not_found", Message: "User not found"})
			return
		}
		sc.Dialog = domain.DialogUpdate
		sc.Selected = &rec
		sc.Draft = domain.DraftFrom(rec)
	})
}

// UpdateRecord submits draft for id with the same error policy as
// CreateRecord. A blank password keeps the stored one.
func (s *Service) UpdateRecord(ctx context.Context, c Caller, id int64, draft domain.Draft) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.update", func(ctx context.Context, sc *Screen) {
		sc.Dialog = domain.DialogUpdate
		rec, ok := sc.find(id)
		if !ok {
			rec = domain.UserRecord{ID: id}
		}
		sc.Selected = &rec
		sc.Draft = draft.Trimmed()
		sc.Errors = nil

		if verrs := validateDraft(sc.Draft, true); verrs != nil {
			sc.Errors = verrs
			return
		}

		if _, err := s.api.Update(ctx, c.Bearer, id, sc.Draft); err != nil {
			s.submitFailed(ctx, c, sc, "update", err)
			return
		}

		c.success("Success", "User updated successfully")
		s.refresh(ctx, c, sc)
		sc.closeDialog()
	})
}

// RequestDelete opens the confirmation dialog for id.
func (s *Service) RequestDelete(ctx context.Context, c Caller, id int64) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.request_delete", func(_ context.Context, sc *Screen) {
		sc.closeDialog()
		sc.Dialog = domain.DialogDelete
		rec, ok := sc.find(id)
		if !ok {
			rec = domain.UserRecord{ID: id}
		}
		sc.Selected = &rec
	})
}

// DeleteRecord deletes id when confirmed. Declining is a silent no-op apart
// from closing the confirmation. There is no undo.
func (s *Service) DeleteRecord(ctx context.Context, c Caller, id int64, confirmed bool) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.delete", func(ctx context.Context, sc *Screen) {
		sc.closeDialog()
		if !confirmed {
			return
		}

		if err := s.api.Delete(ctx, c.Bearer, id); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Int64("id", id).Msg("logbook_delete_failed")
			c.failure(err)
			return
		}

		c.success("Deleted!", "User has been deleted.")
		s.refresh(ctx, c, sc)
	})
}

// CloseDialog is the cancel path of every dialog.
func (s *Service) CloseDialog(ctx context.Context, c Caller) (*Screen, error) {
	return s.mutate(ctx, c, "logbook.close", func(_ context.Context, sc *Screen) {
		sc.closeDialog()
	})
}

// Forget drops the stored screen for key, used when the session ends.
func (s *Service) Forget(ctx context.Context, key string) error {
	return s.states.Delete(ctx, key)
}

// refresh replaces the list with the server's. Failures are logged and the
// previous list is kept.
func (s *Service) refresh(ctx context.Context, c Caller, sc *Screen) {
	recs, err := s.api.List(ctx, c.Bearer)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("logbook_list_failed")
		return
	}
	for i := range recs {
		recs[i].Password = ""
	}
	sc.Records = recs
}

func (s *Service) submitFailed(ctx context.Context, c Caller, sc *Screen, op string, err error) {
	logger.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("logbook_submit_failed")

	var ve *downstream.ValidationError
	if errors.As(err, &ve) {
		sc.Errors = ve.Fields
		return
	}
	c.failure(err)
}

func (s *Service) mutate(ctx context.Context, c Caller, span string, fn func(context.Context, *Screen)) (*Screen, error) {
	ctx, sp := tracing.StartSpan(ctx, span)
	defer sp.End()

	sc, err := s.states.Load(ctx, c.Key)
	if err != nil {
		sp.RecordError(err)
		return nil, err
	}

	fn(ctx, sc)
	sp.SetAttributes(
		attribute.String("logbook.dialog", string(sc.Dialog)),
		attribute.Int("logbook.records", len(sc.Records)),
	)

	if err := s.states.Save(ctx, c.Key, sc); err != nil {
		sp.RecordError(err)
		return nil, err
	}
	return sc, nil
}
