package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/news-platform/internal/lib/password"
	"github.com/magabrotheeeer/news-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newMaker(t *testing.T) jwt.Maker {
	t.Helper()
	return jwt.NewMaker("test-secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantUID    string
		wantErr    bool
	}{
		{
			name: "success assigns user role and hashes password",
			setupMocks: func(r *RepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "alice@example.com" &&
						u.Username == "alice" &&
						u.Role == models.RoleUser &&
						u.PasswordHash != "secret123" &&
						u.SubscriptionEnd == nil &&
						password.CompareHash(u.PasswordHash, "secret123") == nil
				})).Return("uid-1", nil).Once()
			},
			wantUID: "uid-1",
		},
		{
			name: "repo error",
			setupMocks: func(r *RepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).Return("", errors.New("duplicate email")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := New(repo, newMaker(t))

			tt.setupMocks(repo)

			uid, err := svc.Register(context.Background(), "alice@example.com", "alice", "Alice", "", "secret123")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUID, uid)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := password.GetHash("secret123")
	require.NoError(t, err)

	user := &models.User{
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: hashed,
		Role:         models.RoleModerator,
	}

	tests := []struct {
		name       string
		password   string
		setupMocks func(r *RepoMock)
		wantRole   string
		wantErr    bool
	}{
		{
			name:     "success returns token with claims",
			password: "secret123",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
			},
			wantRole: models.RoleModerator,
		},
		{
			name:     "wrong password",
			password: "wrong",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
			},
			wantErr: true,
		},
		{
			name:     "user not found",
			password: "secret123",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").Return(nil, errors.New("not found")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			maker := newMaker(t)
			svc := New(repo, maker)

			tt.setupMocks(repo)

			token, role, err := svc.Login(context.Background(), "alice", tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, role)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Username)
			assert.Equal(t, "alice@example.com", claims.Email)
			assert.Equal(t, models.RoleModerator, claims.Role)

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	maker := newMaker(t)
	svc := New(new(RepoMock), maker)

	token, err := maker.GenerateToken("alice", "alice@example.com", models.RoleUser)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	_, err = svc.ValidateToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}
