package environments

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envboard/envboard/pkg/apperrors"
	"github.com/envboard/envboard/pkg/users"
)

var (
	testAdmin = &users.User{ID: 1, Username: "admin", Email: "admin@example.com"}
	testGuest = &users.User{ID: 2, Username: "guest", Email: "guest@example.com"}
)

func newInvitationService(t *testing.T) (*PostgresService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewPostgresService(db, userDirectory(testAdmin, testGuest))
	return svc, mock, func() { db.Close() }
}

func expectEnvironment(mock sqlmock.Sqlmock, id, adminID int64) {
	mock.ExpectQuery("SELECT id, name, color").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "administrator_id", "created_at"}).
			AddRow(id, "Ops", "", adminID, time.Now()))
}

func TestCreateInvitation(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectEnvironment(mock, 10, 1)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), "guest@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), "guest@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO invitations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(100, time.Now()))

	inv, err := svc.CreateInvitation(context.Background(), 1, 10, &CreateInvitationRequest{
		Email: " Guest@Example.com ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), inv.ID)
	assert.Equal(t, "guest@example.com", inv.Email)
	assert.Equal(t, int64(2), inv.GuestID)
	assert.Len(t, inv.Token, 64)
	assert.False(t, inv.Accepted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInvitation_RequiresEmail(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectEnvironment(mock, 10, 1)

	_, err := svc.CreateInvitation(context.Background(), 1, 10, &CreateInvitationRequest{Email: "  "})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateInvitation_RejectsSelfInvite(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectEnvironment(mock, 10, 1)

	_, err := svc.CreateInvitation(context.Background(), 1, 10, &CreateInvitationRequest{
		Email: "admin@example.com",
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "invite yourself")
}

func TestCreateInvitation_DuplicatePending(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectEnvironment(mock, 10, 1)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), "guest@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.CreateInvitation(context.Background(), 1, 10, &CreateInvitationRequest{
		Email: "guest@example.com",
	})
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "already been invited")
}

func TestCreateInvitation_AlreadyParticipant(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectEnvironment(mock, 10, 1)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), "guest@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), "guest@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.CreateInvitation(context.Background(), 1, 10, &CreateInvitationRequest{
		Email: "guest@example.com",
	})
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "already a participant")
}

func TestCreateInvitation_GuestNotRegistered(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectEnvironment(mock, 10, 1)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), "nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(10), "nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := svc.CreateInvitation(context.Background(), 1, 10, &CreateInvitationRequest{
		Email: "nobody@example.com",
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "no registered user")
}

func TestCreateInvitation_InviterMustBeMember(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectEnvironment(mock, 10, 1)
	// Inviter 2 is not the administrator and not in the set.
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := svc.CreateInvitation(context.Background(), 2, 10, &CreateInvitationRequest{
		Email: "guest@example.com",
	})
	assert.True(t, apperrors.IsPermissionDenied(err))
}

func expectInvitation(mock sqlmock.Sqlmock, id, envID, guestID int64, accepted bool) {
	mock.ExpectQuery("SELECT id, environment_id, email, token").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "environment_id", "email", "token", "inviter_id", "guest_id", "accepted", "created_at"}).
			AddRow(id, envID, "guest@example.com", "tok", 1, guestID, accepted, time.Now()))
}

func TestAcceptInvitation(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectInvitation(mock, 100, 10, 2, false)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO environment_participant_set").
		WithArgs(int64(10), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE invitations SET accepted").
		WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// Eager provisioning finds the participant row already present.
	roleID := int64(1)
	mock.ExpectQuery("SELECT id, user_id, environment_id").
		WithArgs(int64(2), int64(10)).
		WillReturnRows(participantRows(20, 2, 10, &roleID))

	err := svc.AcceptInvitation(context.Background(), 2, 100)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptInvitation_WrongUserSeesNotFound(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectInvitation(mock, 100, 10, 2, false)

	err := svc.AcceptInvitation(context.Background(), 5, 100)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAcceptInvitation_NotRepeatable(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectInvitation(mock, 100, 10, 2, true)

	err := svc.AcceptInvitation(context.Background(), 2, 100)
	assert.True(t, apperrors.IsConflict(err))
}

func TestDeclineInvitation_DeletesRow(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectInvitation(mock, 100, 10, 2, false)
	mock.ExpectExec("DELETE FROM invitations").
		WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.DeclineInvitation(context.Background(), 2, 100)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclineInvitation_AcceptedCannotBeDeclined(t *testing.T) {
	svc, mock, done := newInvitationService(t)
	defer done()

	expectInvitation(mock, 100, 10, 2, true)

	err := svc.DeclineInvitation(context.Background(), 2, 100)
	assert.True(t, apperrors.IsConflict(err))
}
