package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/repositories"
	"github.com/campushub/registrar/internal/pkg/apperrors"
	"github.com/campushub/registrar/internal/pkg/auth"
)

// SignUpInput carries the fields needed to create a student account.
type SignUpInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Identifier string // institutional student number
}

// AuthResult bundles the issued token with the authenticated user.
type AuthResult struct {
	Token     string
	ExpiresIn int
	User      *models.User
	Student   *models.Student
}

// AuthService handles account creation and login.
type AuthService struct {
	users      repositories.UserStore
	students   repositories.StudentStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new authentication service instance.
func NewAuthService(users repositories.UserStore, students repositories.StudentStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		students:   students,
		jwtService: jwtService,
		logger:     logger,
	}
}

// SignUp registers a new student account and returns a fresh token.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Identifier = strings.TrimSpace(input.Identifier)

	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "password must be at least 8 characters")
	}
	if input.Identifier == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "student identifier is required")
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, apperrors.ErrInternal
	}

	user := &models.User{
		Email:     input.Email,
		Password:  hashed,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		RoleType:  models.RoleStudent,
		IsActive:  true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		s.logger.Error().Err(err).Msg("Failed to create user")
		return nil, apperrors.ErrInternal
	}

	student := &models.Student{
		UserID:           user.ID,
		Identifier:       input.Identifier,
		CompletedCourses: []string{},
	}

	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, repositories.ErrIdentifierTaken) {
			return nil, apperrors.ErrStudentIDAlreadyExists
		}
		s.logger.Error().Err(err).Msg("Failed to create student record")
		return nil, apperrors.ErrInternal
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		return nil, apperrors.ErrInternal
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Str("identifier", student.Identifier).
		Msg("Student account created")

	return &AuthResult{Token: token, ExpiresIn: expiresIn, User: user, Student: student}, nil
}

// Login authenticates by email and password and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("Failed to look up user")
		return nil, apperrors.ErrInternal
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		return nil, apperrors.ErrInternal
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record login time")
	}

	result := &AuthResult{Token: token, ExpiresIn: expiresIn, User: user}

	if student, err := s.students.GetByUserID(ctx, user.ID); err == nil {
		result.Student = student
	}

	return result, nil
}
