package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/pkg/apperrors"
	"github.com/campushub/registrar/internal/pkg/auth"
)

func newAuthFixture() (*AuthService, *memUserStore, *memStudentStore) {
	users := newMemUserStore()
	students := newMemStudentStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "registrar.test",
	})
	return NewAuthService(users, students, jwtService, zerolog.Nop()), users, students
}

func validSignUp() SignUpInput {
	return SignUpInput{
		Email:      "Jordan.Lee@Example.edu",
		Password:   "correct-horse",
		FirstName:  "Jordan",
		LastName:   "Lee",
		Identifier: "2026-0042",
	}
}

func TestSignUp(t *testing.T) {
	service, _, _ := newAuthFixture()

	result, err := service.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "jordan.lee@example.edu", result.User.Email)
	assert.Equal(t, models.RoleStudent, result.User.RoleType)
	assert.NotEqual(t, "correct-horse", result.User.Password, "password must be stored hashed")
	require.NotNil(t, result.Student)
	assert.Equal(t, "2026-0042", result.Student.Identifier)
	assert.Equal(t, result.User.ID, result.Student.UserID)
}

func TestSignUpValidation(t *testing.T) {
	service, _, _ := newAuthFixture()

	tests := []struct {
		name   string
		mutate func(*SignUpInput)
	}{
		{"empty email", func(in *SignUpInput) { in.Email = "" }},
		{"malformed email", func(in *SignUpInput) { in.Email = "not-an-email" }},
		{"short password", func(in *SignUpInput) { in.Password = "short" }},
		{"missing identifier", func(in *SignUpInput) { in.Identifier = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validSignUp()
			tt.mutate(&input)
			_, err := service.SignUp(context.Background(), input)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestSignUpRejectsDuplicates(t *testing.T) {
	service, _, _ := newAuthFixture()

	_, err := service.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	dup := validSignUp()
	dup.Identifier = "2026-0099"
	_, err = service.SignUp(context.Background(), dup)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	dup = validSignUp()
	dup.Email = "other@example.edu"
	_, err = service.SignUp(context.Background(), dup)
	assert.ErrorIs(t, err, apperrors.ErrStudentIDAlreadyExists)
}

func TestLogin(t *testing.T) {
	service, users, _ := newAuthFixture()

	_, err := service.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	result, err := service.Login(context.Background(), "jordan.lee@example.edu", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	require.NotNil(t, result.Student)

	user, err := users.GetByEmail(context.Background(), "jordan.lee@example.edu")
	require.NoError(t, err)
	assert.False(t, user.LastLoginAt.IsZero())
}

func TestLoginFailures(t *testing.T) {
	service, users, _ := newAuthFixture()

	signed, err := service.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	_, err = service.Login(context.Background(), "jordan.lee@example.edu", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = service.Login(context.Background(), "nobody@example.edu", "correct-horse")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Disabled accounts cannot log in even with valid credentials.
	users.mu.Lock()
	users.users[signed.User.ID].IsActive = false
	users.mu.Unlock()

	_, err = service.Login(context.Background(), "jordan.lee@example.edu", "correct-horse")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}
