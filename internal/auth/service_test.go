package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func TestRegisterHashesPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)

	service := NewService(mockRepo, "secret", time.Hour)

	user, err := service.Register(context.Background(), "asha", "asha@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")))

	mockRepo.AssertExpectations(t)
}

func TestLoginRoundTrip(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	service := NewService(mockRepo, "secret", time.Hour)

	user, err := service.Register(context.Background(), "asha", "asha@example.com", "hunter2hunter2")
	require.NoError(t, err)

	mockRepo.On("GetByUsername", mock.Anything, "asha").Return(user, nil)

	token, err := service.Login(context.Background(), "asha", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestLoginWrongPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "secret", time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mockRepo.On("GetByUsername", mock.Anything, "asha").Return(&User{Username: "asha", PasswordHash: string(hash)}, nil)

	_, err = service.Login(context.Background(), "asha", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTokenRejectsTampered(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "secret", time.Hour)

	_, err := service.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	other := NewService(mockRepo, "different-secret", time.Hour)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mockRepo.On("GetByUsername", mock.Anything, "asha").Return(&User{Username: "asha", PasswordHash: string(hash)}, nil)
	token, err := other.Login(context.Background(), "asha", "pw")
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
