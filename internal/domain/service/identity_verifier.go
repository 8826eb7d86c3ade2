package service

import (
	"context"

	"taskcommadmin/internal/domain/entity"
)

// IdentityVerifier turns a bearer token into the identity of the caller.
// Role is filled from token claims when the backend issues one.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*entity.Identity, error)
}
