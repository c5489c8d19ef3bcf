package auth

import (
	"context"
	"testing"

	"github.com/skyfare/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(user *domain.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockUsers := &MockUserRepository{}
		service := NewAuthService(mockUsers, &MockTokenIssuer{})

		mockUsers.On("GetByEmail", ctx, "new@example.com").Return(nil, domain.ErrUserNotFound).Once()
		mockUsers.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

		user, err := service.Register(ctx, RegisterInput{Email: "New@Example.com", Password: "long-enough", FullName: "New User"})

		assert.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long-enough")))
		mockUsers.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockUsers := &MockUserRepository{}
		service := NewAuthService(mockUsers, &MockTokenIssuer{})

		mockUsers.On("GetByEmail", ctx, "taken@example.com").Return(&domain.User{ID: 1}, nil).Once()

		user, err := service.Register(ctx, RegisterInput{Email: "taken@example.com", Password: "long-enough"})

		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		assert.Nil(t, user)
		mockUsers.AssertNotCalled(t, "Create")
	})

	t.Run("short password", func(t *testing.T) {
		service := NewAuthService(&MockUserRepository{}, &MockTokenIssuer{})

		user, err := service.Register(ctx, RegisterInput{Email: "new@example.com", Password: "short"})

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Nil(t, user)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	stored := &domain.User{ID: 7, Email: "user@example.com", PasswordHash: string(hash), Role: domain.RoleUser}

	t.Run("success", func(t *testing.T) {
		mockUsers := &MockUserRepository{}
		mockTokens := &MockTokenIssuer{}
		service := NewAuthService(mockUsers, mockTokens)

		mockUsers.On("GetByEmail", ctx, "user@example.com").Return(stored, nil).Once()
		mockTokens.On("Issue", stored).Return("signed-token", nil).Once()

		token, user, err := service.Login(ctx, "user@example.com", "correct-horse")

		assert.NoError(t, err)
		assert.Equal(t, "signed-token", token)
		assert.Equal(t, int64(7), user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUsers := &MockUserRepository{}
		service := NewAuthService(mockUsers, &MockTokenIssuer{})

		mockUsers.On("GetByEmail", ctx, "user@example.com").Return(stored, nil).Once()

		token, user, err := service.Login(ctx, "user@example.com", "wrong")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Empty(t, token)
		assert.Nil(t, user)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockUsers := &MockUserRepository{}
		service := NewAuthService(mockUsers, &MockTokenIssuer{})

		mockUsers.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrUserNotFound).Once()

		token, user, err := service.Login(ctx, "ghost@example.com", "whatever")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Empty(t, token)
		assert.Nil(t, user)
	})
}
