package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"print-shop-mis/models"
	"print-shop-mis/repository"
)

var (
	// ErrInvalidCredentials is returned for unknown emails, wrong passwords and inactive users.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned when a token does not map to an active user.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the acting user may not perform the operation.
	ErrForbidden = errors.New("forbidden")
)

const minPasswordLength = 6

// AuthService signs users in and manages console accounts.
type AuthService struct {
	users    repository.UserRepositoryInterface
	sessions SessionStore
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

// NewAuthService creates an AuthService. Sessions live for ttl.
func NewAuthService(users repository.UserRepositoryInterface, sessions SessionStore, ttl time.Duration) *AuthService {
	return &AuthService{users: users, sessions: sessions, ttl: ttl, cost: bcrypt.DefaultCost, now: time.Now}
}

// HashPassword returns the bcrypt hash of a password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Signin verifies credentials and opens a session.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*models.SigninResponse, *models.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		zap.S().Warnf("⚠️ Signin: unknown email %q", email)
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive || !checkPassword(user.PasswordHash, password) {
		zap.S().Warnf("⚠️ Signin: rejected user id=%d", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, err
	}

	zap.S().Infof("✅ Signin: user id=%d signed in", user.ID)
	return &models.SigninResponse{Token: session.Token, User: user}, session, nil
}

// Signout drops the session behind token.
func (s *AuthService) Signout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to its active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// CreateUser validates and stores a new account.
func (s *AuthService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	fullname := strings.TrimSpace(req.Fullname)
	if fullname == "" {
		return nil, models.NewValidationError("Full name is required")
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, models.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != models.RoleAdmin && role != models.RoleReception {
		return nil, models.NewValidationError("Role must be 'admin' or 'reception'")
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, fullname, req.Email, hash, role)
}

// UpdateProfile changes name, email or password of a user. Users may edit themselves after
// confirming their current password; admins may edit anyone.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *models.User, id int64, req *models.UpdateProfileRequest) (*models.User, error) {
	self := actor.ID == id
	if !self && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if self {
		if req.CurrentPassword == "" {
			return nil, models.NewValidationError("Current password is required")
		}
		current, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !checkPassword(current.PasswordHash, req.CurrentPassword) {
			return nil, models.NewValidationError("Current password is incorrect")
		}
	}

	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		if err := validateEmail(*req.Email); err != nil {
			return nil, err
		}
	}

	var hash string
	if req.NewPassword != "" {
		if len(req.NewPassword) < minPasswordLength {
			return nil, models.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		}
		var err error
		if hash, err = s.HashPassword(req.NewPassword); err != nil {
			return nil, err
		}
	}

	return s.users.UpdateProfile(ctx, id, req.Fullname, req.Email, hash)
}

// Delete removes a user other than the actor.
func (s *AuthService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if actor.ID == id {
		return models.NewValidationError("You cannot delete your own account")
	}
	return s.users.Delete(ctx, id)
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.NewValidationError("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.Contains(email, " ") {
		return models.NewValidationError("Email is invalid")
	}
	return nil
}
