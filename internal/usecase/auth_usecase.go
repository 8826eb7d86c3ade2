package usecase

import (
	"context"
	"strings"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/internal/domain/service"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

type AuthUseCase struct {
	verifier service.IdentityVerifier
	profiles repository.ProfileRepository
}

func NewAuthUseCase(verifier service.IdentityVerifier, profiles repository.ProfileRepository) *AuthUseCase {
	return &AuthUseCase{
		verifier: verifier,
		profiles: profiles,
	}
}

// Authenticate verifies token without the admin gate.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.Unauthorized("Authorization token required", nil)
	}

	identity, err := uc.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, errors.CodeUnauthorized) {
			return nil, err
		}
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	return identity, nil
}

// Authorize verifies token and lets only admins through.
func (uc *AuthUseCase) Authorize(ctx context.Context, token string) (*entity.Identity, error) {
	identity, err := uc.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	admin, err := uc.IsAdmin(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !admin {
		logger.Warn("User %s (%s) is not an admin", identity.UserID, identity.Email)
		return nil, errors.Forbidden("Not authorized as admin", nil)
	}

	identity.Role = entity.RoleAdmin
	return identity, nil
}

// IsAdmin checks the role claim first, then the stored profile by id and
// finally by email.
func (uc *AuthUseCase) IsAdmin(ctx context.Context, identity *entity.Identity) (bool, error) {
	if identity == nil {
		return false, nil
	}
	if isAdminRole(identity.Role) {
		return true, nil
	}

	role, err := uc.profiles.RoleByID(ctx, identity.UserID)
	if err != nil {
		return false, errors.Internal("Failed to load profile role", err)
	}
	if role == "" && identity.Email != "" {
		role, err = uc.profiles.RoleByEmail(ctx, identity.Email)
		if err != nil {
			return false, errors.Internal("Failed to load profile role", err)
		}
	}
	if role == "" {
		logger.Debug("Admin check: no profile found for uid=%s email=%s", identity.UserID, identity.Email)
	}
	return isAdminRole(role), nil
}

func isAdminRole(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), entity.RoleAdmin)
}
