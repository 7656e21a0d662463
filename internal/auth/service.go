package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/internal/users"
	pkgAuth "github.com/storeratings/storeratings-backend/pkg/auth"
	"github.com/storeratings/storeratings-backend/pkg/auth/session"
	"github.com/storeratings/storeratings-backend/pkg/config"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	invalidRefreshMessage     = "invalid refresh token"
	// timingPassword is hashed once so unknown emails cost the same as wrong passwords.
	timingPassword = "timing-equalizer"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type sessionManager interface {
	Generate(ctx context.Context, userID uuid.UUID, accessID string) (string, error)
	Rotate(ctx context.Context, userID uuid.UUID, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
// SessionManager may be nil, in which case no refresh tokens are issued.
type ServiceParams struct {
	UserRepo       userRepository
	Hasher         users.PasswordHasher
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Now            func() time.Time
}

type service struct {
	users      userRepository
	hasher     users.PasswordHasher
	session    sessionManager
	jwtCfg     config.JWTConfig
	now        func() time.Time
	timingHash string
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	timingHash, err := params.Hasher.Hash(timingPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare timing hash: %w", err)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:      params.UserRepo,
		hasher:     params.Hasher,
		session:    params.SessionManager,
		jwtCfg:     params.JWTConfig,
		now:        now,
		timingHash: timingHash,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_, _ = s.hasher.Verify(password, s.timingHash)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if s.session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "refresh tokens require a session store")
	}

	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.UserID, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidRefreshMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	// role or email may have changed since the old token was minted
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		_ = s.session.Revoke(ctx, newAccessID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	token, expiresAt, err := s.mint(user, newAccessID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:        token,
		RefreshToken: newRefresh,
		ExpiresAt:    expiresAt,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if s.session == nil {
		return nil
	}
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session id missing")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// issue mints an access token and, when sessions are enabled, a refresh token.
func (s *service) issue(ctx context.Context, user *models.User) (*AuthResponse, error) {
	accessID := session.NewAccessID()
	token, expiresAt, err := s.mint(user, accessID)
	if err != nil {
		return nil, err
	}

	resp := &AuthResponse{Token: token, ExpiresAt: expiresAt, User: users.FromModel(user)}
	if s.session != nil {
		refreshToken, err := s.session.Generate(ctx, user.ID, accessID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
		}
		resp.RefreshToken = refreshToken
	}
	return resp, nil
}

func (s *service) mint(user *models.User, accessID string) (string, time.Time, error) {
	now := s.now().UTC()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return "", time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute), nil
}
