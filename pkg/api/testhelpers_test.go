package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/envboard/envboard/pkg/activities"
	"github.com/envboard/envboard/pkg/contextkeys"
	"github.com/envboard/envboard/pkg/environments"
	"github.com/envboard/envboard/pkg/notifications"
	"github.com/envboard/envboard/pkg/users"
)

// mockEnvironmentService is a func-field test double for
// environments.Service. Unset fields panic on use so a test fails
// loudly when a handler makes an unexpected call.
type mockEnvironmentService struct {
	CreateEnvironmentFn    func(ctx context.Context, creatorID int64, req *environments.CreateEnvironmentRequest) (*environments.Environment, error)
	GetEnvironmentFn       func(ctx context.Context, id int64) (*environments.Environment, error)
	ListEnvironmentsFn     func(ctx context.Context, userID int64) ([]*environments.Environment, error)
	UpdateEnvironmentFn    func(ctx context.Context, id int64, req *environments.UpdateEnvironmentRequest) (*environments.Environment, error)
	DeleteEnvironmentFn    func(ctx context.Context, id int64) error
	GetRoleFn              func(ctx context.Context, id int64) (*environments.Role, error)
	ApplyPermissionsFn     func(ctx context.Context, environmentID, participantID int64, vector environments.CapabilityVector) (*environments.PermissionAssignment, error)
	GetPermissionsFn       func(ctx context.Context, environmentID, participantID int64) (*environments.PermissionAssignment, error)
	EnsureParticipantFn    func(ctx context.Context, userID, environmentID int64) (*environments.Participant, error)
	GetParticipantFn       func(ctx context.Context, id int64) (*environments.Participant, error)
	InParticipantSetFn     func(ctx context.Context, userID, environmentID int64) (bool, error)
	ListEffectiveMembersFn func(ctx context.Context, environmentID int64) ([]*environments.EffectiveMember, error)
	CreateInvitationFn     func(ctx context.Context, inviterID, environmentID int64, req *environments.CreateInvitationRequest) (*environments.Invitation, error)
	GetInvitationFn        func(ctx context.Context, id int64) (*environments.Invitation, error)
	ListInvitationsFn      func(ctx context.Context, guestID int64) ([]*environments.Invitation, error)
	AcceptInvitationFn     func(ctx context.Context, actingUserID, invitationID int64) error
	DeclineInvitationFn    func(ctx context.Context, actingUserID, invitationID int64) error
}

func (m *mockEnvironmentService) CreateEnvironment(ctx context.Context, creatorID int64, req *environments.CreateEnvironmentRequest) (*environments.Environment, error) {
	return m.CreateEnvironmentFn(ctx, creatorID, req)
}

func (m *mockEnvironmentService) GetEnvironment(ctx context.Context, id int64) (*environments.Environment, error) {
	return m.GetEnvironmentFn(ctx, id)
}

func (m *mockEnvironmentService) ListEnvironments(ctx context.Context, userID int64) ([]*environments.Environment, error) {
	return m.ListEnvironmentsFn(ctx, userID)
}

func (m *mockEnvironmentService) UpdateEnvironment(ctx context.Context, id int64, req *environments.UpdateEnvironmentRequest) (*environments.Environment, error) {
	return m.UpdateEnvironmentFn(ctx, id, req)
}

func (m *mockEnvironmentService) DeleteEnvironment(ctx context.Context, id int64) error {
	return m.DeleteEnvironmentFn(ctx, id)
}

func (m *mockEnvironmentService) GetRole(ctx context.Context, id int64) (*environments.Role, error) {
	return m.GetRoleFn(ctx, id)
}

func (m *mockEnvironmentService) ApplyPermissions(ctx context.Context, environmentID, participantID int64, vector environments.CapabilityVector) (*environments.PermissionAssignment, error) {
	return m.ApplyPermissionsFn(ctx, environmentID, participantID, vector)
}

func (m *mockEnvironmentService) GetPermissions(ctx context.Context, environmentID, participantID int64) (*environments.PermissionAssignment, error) {
	return m.GetPermissionsFn(ctx, environmentID, participantID)
}

func (m *mockEnvironmentService) EnsureParticipant(ctx context.Context, userID, environmentID int64) (*environments.Participant, error) {
	return m.EnsureParticipantFn(ctx, userID, environmentID)
}

func (m *mockEnvironmentService) GetParticipant(ctx context.Context, id int64) (*environments.Participant, error) {
	return m.GetParticipantFn(ctx, id)
}

func (m *mockEnvironmentService) InParticipantSet(ctx context.Context, userID, environmentID int64) (bool, error) {
	return m.InParticipantSetFn(ctx, userID, environmentID)
}

func (m *mockEnvironmentService) ListEffectiveMembers(ctx context.Context, environmentID int64) ([]*environments.EffectiveMember, error) {
	return m.ListEffectiveMembersFn(ctx, environmentID)
}

func (m *mockEnvironmentService) CreateInvitation(ctx context.Context, inviterID, environmentID int64, req *environments.CreateInvitationRequest) (*environments.Invitation, error) {
	return m.CreateInvitationFn(ctx, inviterID, environmentID, req)
}

func (m *mockEnvironmentService) GetInvitation(ctx context.Context, id int64) (*environments.Invitation, error) {
	return m.GetInvitationFn(ctx, id)
}

func (m *mockEnvironmentService) ListInvitations(ctx context.Context, guestID int64) ([]*environments.Invitation, error) {
	return m.ListInvitationsFn(ctx, guestID)
}

func (m *mockEnvironmentService) AcceptInvitation(ctx context.Context, actingUserID, invitationID int64) error {
	return m.AcceptInvitationFn(ctx, actingUserID, invitationID)
}

func (m *mockEnvironmentService) DeclineInvitation(ctx context.Context, actingUserID, invitationID int64) error {
	return m.DeclineInvitationFn(ctx, actingUserID, invitationID)
}

// mockActivityService is a func-field test double for
// activities.Service.
type mockActivityService struct {
	CreateActivityFn func(ctx context.Context, environmentID int64, req *activities.CreateActivityRequest) (*activities.Activity, error)
	GetActivityFn    func(ctx context.Context, id int64) (*activities.Activity, error)
	ListActivitiesFn func(ctx context.Context, environmentID int64) ([]*activities.Activity, error)
	UpdateActivityFn func(ctx context.Context, id int64, req *activities.UpdateActivityRequest) (*activities.Activity, error)
	DeleteActivityFn func(ctx context.Context, id int64) error
	SetAllocationFn  func(ctx context.Context, activityID int64, participantIDs []int64) (*activities.AllocationChange, error)
	ListAllocationFn func(ctx context.Context, activityID int64) ([]int64, error)
}

func (m *mockActivityService) CreateActivity(ctx context.Context, environmentID int64, req *activities.CreateActivityRequest) (*activities.Activity, error) {
	return m.CreateActivityFn(ctx, environmentID, req)
}

func (m *mockActivityService) GetActivity(ctx context.Context, id int64) (*activities.Activity, error) {
	return m.GetActivityFn(ctx, id)
}

func (m *mockActivityService) ListActivities(ctx context.Context, environmentID int64) ([]*activities.Activity, error) {
	return m.ListActivitiesFn(ctx, environmentID)
}

func (m *mockActivityService) UpdateActivity(ctx context.Context, id int64, req *activities.UpdateActivityRequest) (*activities.Activity, error) {
	return m.UpdateActivityFn(ctx, id, req)
}

func (m *mockActivityService) DeleteActivity(ctx context.Context, id int64) error {
	return m.DeleteActivityFn(ctx, id)
}

func (m *mockActivityService) SetAllocation(ctx context.Context, activityID int64, participantIDs []int64) (*activities.AllocationChange, error) {
	return m.SetAllocationFn(ctx, activityID, participantIDs)
}

func (m *mockActivityService) ListAllocation(ctx context.Context, activityID int64) ([]int64, error) {
	return m.ListAllocationFn(ctx, activityID)
}

// mockNotificationService is a func-field test double for
// notifications.Service.
type mockNotificationService struct {
	CreateNotificationFn func(ctx context.Context, n *notifications.Notification) error
	ListUnreadFn         func(ctx context.Context, userID int64) ([]*notifications.Notification, error)
	MarkReadFn           func(ctx context.Context, userID, notificationID int64) error
	MarkAllReadFn        func(ctx context.Context, userID int64) error
	CountUnreadFn        func(ctx context.Context, userID int64) (int, error)
	PurgeReadFn          func(ctx context.Context, olderThan time.Time) (int64, error)
}

func (m *mockNotificationService) CreateNotification(ctx context.Context, n *notifications.Notification) error {
	return m.CreateNotificationFn(ctx, n)
}

func (m *mockNotificationService) ListUnread(ctx context.Context, userID int64) ([]*notifications.Notification, error) {
	return m.ListUnreadFn(ctx, userID)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return m.MarkReadFn(ctx, userID, notificationID)
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return m.MarkAllReadFn(ctx, userID)
}

func (m *mockNotificationService) CountUnread(ctx context.Context, userID int64) (int, error) {
	return m.CountUnreadFn(ctx, userID)
}

func (m *mockNotificationService) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	return m.PurgeReadFn(ctx, olderThan)
}

// mockUserService is a func-field test double for users.Service.
type mockUserService struct {
	CreateUserFn     func(ctx context.Context, req *users.CreateUserRequest) (*users.User, error)
	GetUserFn        func(ctx context.Context, id int64) (*users.User, error)
	GetUserByEmailFn func(ctx context.Context, email string) (*users.User, error)
}

func (m *mockUserService) CreateUser(ctx context.Context, req *users.CreateUserRequest) (*users.User, error) {
	return m.CreateUserFn(ctx, req)
}

func (m *mockUserService) GetUser(ctx context.Context, id int64) (*users.User, error) {
	return m.GetUserFn(ctx, id)
}

func (m *mockUserService) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return m.GetUserByEmailFn(ctx, email)
}

func testUser(id int64) *users.User {
	return &users.User{
		ID:       id,
		Username: "user",
		Email:    "user@example.com",
		IsActive: true,
	}
}

// newRequest builds a request with an optional JSON body, an optional
// authenticated user and mux path variables.
func newRequest(t *testing.T, method, target string, body interface{}, user *users.User, vars map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if user != nil {
		req = req.WithContext(context.WithValue(req.Context(), contextkeys.UserKey, user))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
