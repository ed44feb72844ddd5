package environments

import (
	"context"

	"github.com/envboard/envboard/pkg/apperrors"
	"github.com/envboard/envboard/pkg/users"
)

// mockUserService is a func-field test double for users.Service.
type mockUserService struct {
	createUserFunc     func(ctx context.Context, req *users.CreateUserRequest) (*users.User, error)
	getUserFunc        func(ctx context.Context, id int64) (*users.User, error)
	getUserByEmailFunc func(ctx context.Context, email string) (*users.User, error)
}

func (m *mockUserService) CreateUser(ctx context.Context, req *users.CreateUserRequest) (*users.User, error) {
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, req)
	}
	return nil, apperrors.New(apperrors.KindNotFound, "not implemented")
}

func (m *mockUserService) GetUser(ctx context.Context, id int64) (*users.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, id)
	}
	return nil, apperrors.Errorf(apperrors.KindNotFound, "user %d not found", id)
}

func (m *mockUserService) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	if m.getUserByEmailFunc != nil {
		return m.getUserByEmailFunc(ctx, email)
	}
	return nil, apperrors.Errorf(apperrors.KindNotFound, "no user registered with email %s", email)
}

// userDirectory builds a mock user service over a fixed set of users.
func userDirectory(all ...*users.User) *mockUserService {
	return &mockUserService{
		getUserFunc: func(ctx context.Context, id int64) (*users.User, error) {
			for _, u := range all {
				if u.ID == id {
					return u, nil
				}
			}
			return nil, apperrors.Errorf(apperrors.KindNotFound, "user %d not found", id)
		},
		getUserByEmailFunc: func(ctx context.Context, email string) (*users.User, error) {
			for _, u := range all {
				if u.Email == email {
					return u, nil
				}
			}
			return nil, apperrors.Errorf(apperrors.KindNotFound, "no user registered with email %s", email)
		},
	}
}
