package service

import (
	"testing"

	"go-stocktrack/internal/model"
	"go-stocktrack/pkg/apperror"
	"go-stocktrack/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo(users ...*model.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		m.users[u.Email] = u
	}
	return m
}

func (m *mockUserRepo) FindByEmail(email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, &apperror.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (m *mockUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, &apperror.NotFoundError{Resource: "user"}
}

func (m *mockUserRepo) Create(user *model.User) error {
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) Update(user *model.User) error {
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.Password = hashedPassword
			return nil
		}
	}
	return &apperror.NotFoundError{Resource: "user"}
}

func activeUser(t *testing.T, email, password string) *model.User {
	t.Helper()
	u := &model.User{Email: email, FullName: "Alice", IsActive: true}
	require.NoError(t, u.SetPassword(password))
	return u
}

func TestLogin(t *testing.T) {
	user := activeUser(t, "alice@example.com", "s3cret")
	svc := NewAuthService(newMockUserRepo(user))

	resp, err := svc.Login("alice@example.com", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	claims, err := jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(activeUser(t, "alice@example.com", "s3cret")))

	_, err := svc.Login("alice@example.com", "nope")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newMockUserRepo())

	_, err := svc.Login("ghost@example.com", "s3cret")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	user := activeUser(t, "alice@example.com", "s3cret")
	user.IsActive = false
	svc := NewAuthService(newMockUserRepo(user))

	_, err := svc.Login("alice@example.com", "s3cret")

	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestResetPassword(t *testing.T) {
	user := activeUser(t, "alice@example.com", "s3cret")
	repo := newMockUserRepo(user)
	svc := NewAuthService(repo)

	require.NoError(t, svc.ResetPassword("alice@example.com", "s3cret", "newpass"))
	assert.True(t, user.CheckPassword("newpass"))

	assert.ErrorIs(t, svc.ResetPassword("alice@example.com", "wrong", "x"), ErrWrongPassword)
}
