package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/storage"
)

// UserService manages user accounts and per-user settings.
type UserService struct {
	users    storage.UserStore
	verifier *CredentialVerifier
	admins   []string
	logger   *slog.Logger
}

// UserConfig holds configuration for UserService.
type UserConfig struct {
	// Admins lists usernames that register as administrators.
	Admins []string
}

// NewUserService creates the service.
func NewUserService(users storage.UserStore, verifier *CredentialVerifier, cfg UserConfig, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, verifier: verifier, admins: cfg.Admins, logger: logger}
}

// RegisterRequest contains parameters for user registration.
type RegisterRequest struct {
	Username      string
	Password      string
	FirstName     string
	LastName      string
	Email         string
	DefaultPlugin string
	Settings      map[string]string
}

// RegisterResponse contains the created account.
type RegisterResponse struct {
	User *domain.User
}

// Register creates a new account. The username must be free.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.ErrUserNotAuthorized.WithDetails("username and password are required")
	}

	// 1. The username must not already exist.
	_, err := s.users.GetUser(ctx, req.Username)
	switch {
	case err == nil:
		return nil, domain.ErrUsernameTaken.WithDetails("username " + req.Username)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, domain.ErrStorage.WithCause(err)
	}

	// 2. Hash the password and persist.
	hash, err := s.verifier.Hash(req.Password)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}

	settings := req.Settings
	if settings == nil {
		settings = make(map[string]string)
	}
	admin := slices.Contains(s.admins, req.Username)
	user := &domain.User{
		Username:      req.Username,
		PasswordHash:  hash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Admin:         admin,
		DefaultPlugin: req.DefaultPlugin,
		Settings:      settings,
	}
	if err := s.users.PutUser(ctx, user); err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	s.logger.Info("user registered", "username", req.Username, "admin", admin)
	return &RegisterResponse{User: user}, nil
}

// Authenticate verifies a username/password pair and returns the
// account. Unknown users and bad passwords both report
// USER_NOT_AUTHORIZED.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrUserNotAuthorized
		}
		return nil, domain.ErrStorage.WithCause(err)
	}
	if !s.verifier.Verify(password, user.PasswordHash) {
		s.logger.Warn("authentication failed", "username", username)
		return nil, domain.ErrUserNotAuthorized
	}
	return user, nil
}

// UpdateSettingsRequest contains parameters for a settings update.
type UpdateSettingsRequest struct {
	Username string
	Key      string
	Value    string
}

// UpdateSettings sets one settings key for a user.
func (s *UserService) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) error {
	user, err := s.users.GetUser(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.ErrUserNotAuthorized
		}
		return domain.ErrStorage.WithCause(err)
	}

	updated := user.Clone()
	if updated.Settings == nil {
		updated.Settings = make(map[string]string)
	}
	updated.Settings[req.Key] = req.Value
	if err := s.users.PutUser(ctx, updated); err != nil {
		return domain.ErrStorage.WithCause(err)
	}

	s.logger.Info("settings updated", "username", req.Username, "key", req.Key)
	return nil
}

// GetSetting returns one settings value for a user.
func (s *UserService) GetSetting(ctx context.Context, username, key string) (string, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", domain.ErrUserNotAuthorized
		}
		return "", domain.ErrStorage.WithCause(err)
	}

	value, ok := user.Settings[key]
	if !ok {
		return "", domain.ErrSettingsKeyNotFound.WithDetails("key " + key)
	}
	return value, nil
}
