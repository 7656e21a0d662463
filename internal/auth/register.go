package auth

import (
	"context"

	"github.com/storeratings/storeratings-backend/internal/users"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
)

// Register creates a normal_user and signs them in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Address:      req.Address,
		Role:         enums.RoleNormalUser,
	})
	if err != nil {
		return nil, users.MapWriteError(err, "create user")
	}

	return s.issue(ctx, user)
}
