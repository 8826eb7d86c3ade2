package repository

import (
	"context"

	"taskcommadmin/internal/domain/entity"
)

type UserRepository interface {
	List(ctx context.Context) ([]*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Deactivate(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]*entity.User, error)
}

// ProfileRepository resolves the stored role of an account.
// Both lookups return "" with a nil error when no profile exists.
type ProfileRepository interface {
	RoleByID(ctx context.Context, id string) (string, error)
	RoleByEmail(ctx context.Context, email string) (string, error)
}
