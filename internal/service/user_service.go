package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workorder/internal/auth"
	"workorder/internal/cache"
	"workorder/internal/models"
	"workorder/internal/repository"
	"workorder/pkg/idgen"
	"workorder/pkg/logger"

	"go.uber.org/zap"
)

// UserInfo is the user view returned to clients.
type UserInfo struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Phone         string     `json:"phone"`
	RegisterTime  time.Time  `json:"register_time"`
	LastLoginTime *time.Time `json:"last_login_time"`
	Token         string     `json:"token,omitempty"`
}

func newUserInfo(u *models.User) *UserInfo {
	return &UserInfo{
		ID:            u.ID,
		Username:      u.Username,
		Phone:         u.Phone,
		RegisterTime:  u.RegisterTime,
		LastLoginTime: u.LastLoginTime,
	}
}

type RegisterInput struct {
	Username string
	Phone    string
	Password string
}

type UserService struct {
	users  UserStore
	tokens TokenStore
	issuer *auth.TokenManager
	hasher auth.PasswordHasher
	cache  cache.Cache
}

func NewUserService(users UserStore, tokens TokenStore, issuer *auth.TokenManager, hasher auth.PasswordHasher, c cache.Cache) *UserService {
	if c == nil {
		c = cache.Nop{}
	}
	return &UserService{users: users, tokens: tokens, issuer: issuer, hasher: hasher, cache: c}
}

// Register creates an enabled user and signs it in. The exists checks are a
// fast path; the unique constraints in the store are authoritative.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*UserInfo, error) {
	if err := checkPassword("password", in.Password); err != nil {
		return nil, err
	}
	if exists, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, &DuplicateError{Field: "username"}
	}
	if exists, err := s.users.ExistsByPhone(ctx, in.Phone); err != nil {
		return nil, err
	} else if exists {
		return nil, &DuplicateError{Field: "phone"}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, hashError("password", err)
	}
	user := &models.User{
		ID:       idgen.NewUserID(),
		Username: in.Username,
		Phone:    in.Phone,
		Password: hash,
		Status:   models.UserEnabled,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return nil, &DuplicateError{Field: dup.Field}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.AuditLogger.Info("User registered successfully", zap.String("user_id", user.ID))

	info := newUserInfo(user)
	info.Token = token
	return info, nil
}

// Login accepts a username or phone number as account.
func (s *UserService) Login(ctx context.Context, account, password string) (*UserInfo, error) {
	user, err := s.users.GetByAccount(ctx, account)
	if errors.Is(err, repository.ErrNotFound) {
		logger.SecurityLogger.Warn("Login for unknown account", zap.String("account", account))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Compare(user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.SecurityLogger.Warn("Invalid password", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled() {
		logger.SecurityLogger.Warn("Login to disabled account", zap.String("user_id", user.ID))
		return nil, ErrAccountDisabled
	}

	lastLogin, err := s.users.UpdateLastLogin(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLoginTime = &lastLogin
	s.forget(ctx, user.ID)

	token, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.AuditLogger.Info("Login success", zap.String("user_id", user.ID))

	info := newUserInfo(user)
	info.Token = token
	return info, nil
}

// GetUserInfo returns the public view of a user, served from cache when
// possible.
func (s *UserService) GetUserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	key := cache.UserKey(userID)
	var cached UserInfo
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		logger.ErrorLogger.Error("Error reading user cache", zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	info := newUserInfo(user)
	if err := s.cache.Set(ctx, key, info); err != nil {
		logger.ErrorLogger.Error("Error caching user", zap.Error(err))
	}
	return info, nil
}

// ChangePassword replaces the password hash, drops every recorded token of
// the user and signs the user in again. Tokens issued earlier stay valid until
// they expire because validation never reads the token records.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (*UserInfo, error) {
	if err := checkPassword("new_password", newPassword); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := s.hasher.Compare(user.Password, oldPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.SecurityLogger.Warn("Invalid password on password change", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, hashError("new_password", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	removed, err := s.tokens.DeleteByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("delete tokens: %w", err)
	}
	s.forget(ctx, user.ID)

	token, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.AuditLogger.Info("Password changed",
		zap.String("user_id", user.ID), zap.Int64("tokens_removed", removed))

	info := newUserInfo(user)
	info.Token = token
	return info, nil
}

// issue signs a token and records it. A failed record is logged only.
func (s *UserService) issue(ctx context.Context, user *models.User) (string, error) {
	token, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	record := &models.UserToken{UserID: user.ID, Token: token.Value, ExpireTime: token.ExpiresAt}
	if err := s.tokens.Insert(ctx, record); err != nil {
		logger.ErrorLogger.Error("Error recording token", zap.String("user_id", user.ID), zap.Error(err))
	}
	return token.Value, nil
}

func (s *UserService) forget(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, cache.UserKey(userID)); err != nil {
		logger.ErrorLogger.Error("Error invalidating user cache", zap.Error(err))
	}
}

func checkPassword(field, password string) error {
	if password == "" {
		return invalid(field, "is required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return invalid(field, fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes))
	}
	return nil
}

func hashError(field string, err error) error {
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return invalid(field, fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes))
	}
	return err
}
