package logbook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baechuer/paradies-dashboard/internal/domain"
	"github.com/baechuer/paradies-dashboard/internal/downstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserAPI struct {
	mock.Mock
}

func (m *mockUserAPI) List(ctx context.Context, bearer string) ([]domain.UserRecord, error) {
	args := m.Called(ctx, bearer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserRecord), args.Error(1)
}

func (m *mockUserAPI) Create(ctx context.Context, bearer string, draft domain.Draft) (*domain.UserRecord, error) {
	args := m.Called(ctx, bearer, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserRecord), args.Error(1)
}

func (m *mockUserAPI) Update(ctx context.Context, bearer string, id int64, draft domain.Draft) (*domain.UserRecord, error) {
	args := m.Called(ctx, bearer, id, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserRecord), args.Error(1)
}

func (m *mockUserAPI) Delete(ctx context.Context, bearer string, id int64) error {
	args := m.Called(ctx, bearer, id)
	return args.Error(0)
}

type recordingNotifier struct {
	notices []domain.Notice
}

func (r *recordingNotifier) Notify(n domain.Notice) {
	r.notices = append(r.notices, n)
}

var (
	ann = domain.UserRecord{ID: 1, Fullname: "Ann", Email: "ann@x.com"}
	a7  = domain.UserRecord{ID: 7, Fullname: "A", Email: "a@x.com"}
)

func setup(t *testing.T) (*Service, *mockUserAPI, *recordingNotifier, Caller) {
	t.Helper()
	api := new(mockUserAPI)
	n := &recordingNotifier{}
	svc := NewService(api, NewMemoryStateStore(time.Hour))
	return svc, api, n, Caller{Key: "sess-1", Bearer: "tok", Notify: n}
}

func mounted(t *testing.T, svc *Service, api *mockUserAPI, c Caller, recs ...domain.UserRecord) {
	t.Helper()
	api.On("List", mock.Anything, "tok").Return(recs, nil).Once()
	_, err := svc.Mount(context.Background(), c)
	require.NoError(t, err)
}

func TestMount_FetchesList(t *testing.T) {
	svc, api, _, c := setup(t)
	api.On("List", mock.Anything, "tok").Return([]domain.UserRecord{ann, {ID: 2, Fullname: "Bo", Email: "bo@x.com", Password: "secret"}}, nil)

	sc, err := svc.Mount(context.Background(), c)

	require.NoError(t, err)
	require.Len(t, sc.Records, 2)
	assert.Empty(t, sc.Records[1].Password, "passwords are never kept for display")
	assert.Equal(t, domain.DialogNone, sc.Dialog)
}

func TestListRecords_FailureKeepsPreviousList(t *testing.T) {
	svc, api, n, c := setup(t)
	mounted(t, svc, api, c, ann, a7)

	api.On("List", mock.Anything, "tok").Return(nil, downstream.ErrUnavailable)
	sc, err := svc.ListRecords(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, []domain.UserRecord{ann, a7}, sc.Records)
	assert.Empty(t, n.notices, "list failures are silent")
}

func TestCreateRecord_SuccessRefetchesAndCloses(t *testing.T) {
	svc, api, n, c := setup(t)
	mounted(t, svc, api, c, ann)

	_, err := svc.OpenCreate(context.Background(), c)
	require.NoError(t, err)

	draft := domain.Draft{Fullname: " Cy ", Email: "cy@x.com", Passwords: "pw"}
	created := domain.UserRecord{ID: 3, Fullname: "Cy", Email: "cy@x.com"}
	api.On("Create", mock.Anything, "tok", domain.Draft{Fullname: "Cy", Email: "cy@x.com", Passwords: "pw"}).Return(&created, nil)
	api.On("List", mock.Anything, "tok").Return([]domain.UserRecord{ann, created}, nil)

	sc, err := svc.CreateRecord(context.Background(), c, draft)

	require.NoError(t, err)
	assert.Equal(t, domain.DialogNone, sc.Dialog)
	assert.Empty(t, sc.Errors)
	assert.Equal(t, domain.Draft{}, sc.Draft)
	assert.Contains(t, sc.Records, created)
	require.Len(t, n.notices, 1)
	assert.Equal(t, domain.Notice{Kind: domain.NoticeSuccess, Title: "Success", Text: "User created successfully"}, n.notices[0])
	api.AssertExpectations(t)
}

func TestCreateRecord_LocalValidationSkipsNetwork(t *testing.T) {
	svc, api, n, c := setup(t)

	sc, err := svc.CreateRecord(context.Background(), c, domain.Draft{Fullname: "  ", Email: "cy@x.com"})

	require.NoError(t, err)
	assert.Equal(t, domain.DialogCreate, sc.Dialog)
	assert.Equal(t, domain.ValidationErrors{
		"fullname":  {"The fullname field is required."},
		"passwords": {"The passwords field is required."},
	}, sc.Errors)
	assert.Empty(t, n.notices)
	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRecord_ServerValidationKeepsDialogOpen(t *testing.T) {
	svc, api, n, c := setup(t)
	mounted(t, svc, api, c, ann)

	fields := domain.ValidationErrors{"email": {"The email has already been taken."}}
	api.On("Create", mock.Anything, "tok", mock.Anything).Return(nil, &downstream.ValidationError{Fields: fields})

	sc, err := svc.CreateRecord(context.Background(), c, domain.Draft{Fullname: "Ann", Email: "ann@x.com", Passwords: "pw"})

	require.NoError(t, err)
	assert.Equal(t, domain.DialogCreate, sc.Dialog)
	assert.Equal(t, fields, sc.Errors, "exactly the server-reported fields")
	assert.Equal(t, "ann@x.com", sc.Draft.Email)
	assert.Equal(t, []domain.UserRecord{ann}, sc.Records)
	assert.Empty(t, n.notices)
	api.AssertNumberOfCalls(t, "List", 1)
}

func TestCreateRecord_GenericErrorUsesServerMessage(t *testing.T) {
	svc, api, n, c := setup(t)

	api.On("Create", mock.Anything, "tok", mock.Anything).
		Return(nil, &downstream.StatusError{StatusCode: 500, Code: "upstream_error", Message: "Database down"}).Once()
	api.On("Create", mock.Anything, "tok", mock.Anything).
		Return(nil, errors.New("boom")).Once()

	draft := domain.Draft{Fullname: "Ann", Email: "ann@x.com", Passwords: "pw"}
	sc, err := svc.CreateRecord(context.Background(), c, draft)
	require.NoError(t, err)
	assert.Equal(t, domain.DialogCreate, sc.Dialog)

	_, err = svc.CreateRecord(context.Background(), c, draft)
	require.NoError(t, err)

	require.Len(t, n.notices, 2)
	assert.Equal(t, domain.Notice{Kind: domain.NoticeError, Title: "Error", Text: "Database down"}, n.notices[0])
	assert.Equal(t, "An error occurred", n.notices[1].Text)
}

func TestCreateRecord_FreshSubmissionClearsErrors(t *testing.T) {
	svc, api, _, c := setup(t)

	sc, err := svc.CreateRecord(context.Background(), c, domain.Draft{})
	require.NoError(t, err)
	require.NotEmpty(t, sc.Errors)

	api.On("Create", mock.Anything, "tok", mock.Anything).Return(nil, errors.New("boom"))
	sc, err = svc.CreateRecord(context.Background(), c, domain.Draft{Fullname: "A", Email: "a@x.com", Passwords: "p"})
	require.NoError(t, err)
	assert.Empty(t, sc.Errors)
}

func TestViewRecord_IsLocal(t *testing.T) {
	svc, api, _, c := setup(t)
	mounted(t, svc, api, c, ann, a7)

	sc, err := svc.ViewRecord(context.Background(), c, 7)

	require.NoError(t, err)
	assert.Equal(t, domain.DialogRead, sc.Dialog)
	require.NotNil(t, sc.Selected)
	assert.Equal(t, a7, *sc.Selected)

	sc, err = svc.CloseDialog(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, sc.Selected)
	assert.Equal(t, domain.DialogNone, sc.Dialog)
	api.AssertNumberOfCalls(t, "List", 1)
}

func TestOpenUpdate_PrefillsDraft(t *testing.T) {
	svc, api, _, c := setup(t)
	mounted(t, svc, api, c, ann, a7)

	sc, err := svc.OpenUpdate(context.Background(), c, 7)

	require.NoError(t, err)
	assert.Equal(t, domain.DialogUpdate, sc.Dialog)
	assert.Equal(t, domain.Draft{Fullname: "A", Email: "a@x.com"}, sc.Draft)
}

func TestOpenUpdate_UnknownIDNotifies(t *testing.T) {
	svc, api, n, c := setup(t)
	mounted(t, svc, api, c, ann)

	sc, err := svc.OpenUpdate(context.Background(), c, 99)

	require.NoError(t, err)
	assert.Equal(t, domain.DialogNone, sc.Dialog)
	require.Len(t, n.notices, 1)
	assert.Equal(t, "User not found", n.notices[0].Text)
}

func TestUpdateRecord_BlankPasswordAllowed(t *testing.T) {
	svc, api, n, c := setup(t)
	mounted(t, svc, api, c, a7)

	draft := domain.Draft{Fullname: "B", Email: "a@x.com"}
	updated := domain.UserRecord{ID: 7, Fullname: "B", Email: "a@x.com"}
	api.On("Update", mock.Anything, "tok", int64(7), draft).Return(&updated, nil)
	api.On("List", mock.Anything, "tok").Return([]domain.UserRecord{updated}, nil)

	sc, err := svc.UpdateRecord(context.Background(), c, 7, draft)

	require.NoError(t, err)
	assert.Equal(t, domain.DialogNone, sc.Dialog)
	assert.Equal(t, []domain.UserRecord{updated}, sc.Records)
	assert.Equal(t, "User updated successfully", n.notices[0].Text)
}

func TestUpdateRecord_ServerValidationKeepsDialogOpen(t *testing.T) {
	svc, api, _, c := setup(t)
	mounted(t, svc, api, c, a7)

	fields := domain.ValidationErrors{"email": {"The email must be a valid email address."}}
	api.On("Update", mock.Anything, "tok", int64(7), mock.Anything).Return(nil, &downstream.ValidationError{Fields: fields})

	sc, err := svc.UpdateRecord(context.Background(), c, 7, domain.Draft{Fullname: "A", Email: "nope"})

	require.NoError(t, err)
	assert.Equal(t, domain.DialogUpdate, sc.Dialog)
	assert.Equal(t, fields, sc.Errors)
	require.NotNil(t, sc.Selected)
	assert.Equal(t, int64(7), sc.Selected.ID)
}

func TestUpdateRecord_RequiresNameAndEmail(t *testing.T) {
	svc, api, _, c := setup(t)

	sc, err := svc.UpdateRecord(context.Background(), c, 7, domain.Draft{Passwords: "pw"})

	require.NoError(t, err)
	assert.Equal(t, domain.DialogUpdate, sc.Dialog)
	assert.True(t, sc.Errors.Has("fullname"))
	assert.True(t, sc.Errors.Has("email"))
	assert.False(t, sc.Errors.Has("passwords"))
	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteRecord_DeclinedIsNoop(t *testing.T) {
	svc, api, n, c := setup(t)
	mounted(t, svc, api, c, ann, a7)

	_, err := svc.RequestDelete(context.Background(), c, 7)
	require.NoError(t, err)

	sc, err := svc.DeleteRecord(context.Background(), c, 7, false)

	require.NoError(t, err)
	assert.Equal(t, []domain.UserRecord{ann, a7}, sc.Records)
	assert.Equal(t, domain.DialogNone, sc.Dialog)
	assert.Empty(t, n.notices)
	api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteRecord_ConfirmedRemovesFromNextFetch(t *testing.T) {
	svc, api, n, c := setup(t)
	mounted(t, svc, api, c, ann, a7)

	api.On("Delete", mock.Anything, "tok", int64(7)).Return(nil)
	api.On("List", mock.Anything, "tok").Return([]domain.UserRecord{ann}, nil)

	sc, err := svc.DeleteRecord(context.Background(), c, 7, true)

	require.NoError(t, err)
	assert.Equal(t, []domain.UserRecord{ann}, sc.Records)
	assert.Equal(t, domain.Notice{Kind: domain.NoticeSuccess, Title: "Deleted!", Text: "User has been deleted."}, n.notices[0])
}

func TestDeleteRecord_FailureNotifies(t *testing.T) {
	svc, api, n, c := setup(t)
	mounted(t, svc, api, c, ann)

	api.On("Delete", mock.Anything, "tok", int64(1)).Return(&downstream.StatusError{StatusCode: 403, Message: "Not allowed"})

	sc, err := svc.DeleteRecord(context.Background(), c, 1, true)

	require.NoError(t, err)
	assert.Equal(t, []domain.UserRecord{ann}, sc.Records)
	assert.Equal(t, domain.Notice{Kind: domain.NoticeError, Title: "Error", Text: "Not allowed"}, n.notices[0])
}

func TestDialogs_AreReusable(t *testing.T) {
	svc, api, _, c := setup(t)
	mounted(t, svc, api, c, a7)

	for i := 0; i < 2; i++ {
		sc, err := svc.OpenCreate(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, domain.DialogCreate, sc.Dialog)
		assert.Equal(t, domain.Draft{}, sc.Draft)

		sc, err = svc.CloseDialog(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, domain.DialogNone, sc.Dialog)
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (*Screen, error) { return nil, errors.New("down") }
func (failingStore) Save(context.Context, string, *Screen) error { return nil }
func (failingStore) Delete(context.Context, string) error { return nil }

func TestService_StateStoreFailureSurfaces(t *testing.T) {
	svc := NewService(new(mockUserAPI), failingStore{})

	_, err := svc.Mount(context.Background(), Caller{Key: "k"})

	assert.EqualError(t, err, "down")
}

func TestService_ForgetDropsScreen(t *testing.T) {
	api := new(mockUserAPI)
	states := NewMemoryStateStore(time.Hour)
	svc := NewService(api, states)
	api.On("List", mock.Anything, "tok").Return([]domain.UserRecord{{ID: 1}}, nil).Once()

	_, err := svc.Mount(context.Background(), Caller{Key: "k", Bearer: "tok"})
	require.NoError(t, err)
	require.Equal(t, 1, states.Len())

	require.NoError(t, svc.Forget(context.Background(), "k"))
	assert.Equal(t, 0, states.Len())
}
