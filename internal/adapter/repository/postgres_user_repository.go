package repository

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
)

// postgresUserRepository serves users and roles from the profiles table.
type postgresUserRepository struct {
	db *gorm.DB
}

func NewPostgresUserRepository(db *gorm.DB) repository.UserRepository {
	return &postgresUserRepository{db: db}
}

func NewPostgresProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	var rows []profileRow
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}
	return usersFromRows(rows), nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var row profileRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}
	return row.toEntity(), nil
}

func (r *postgresUserRepository) Update(ctx context.Context, user *entity.User) error {
	result := r.db.WithContext(ctx).Model(&profileRow{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":           user.Name,
		"email":          user.Email,
		"address":        user.Address,
		"business_field": user.BusinessField,
		"is_active":      user.IsActive,
	})
	if result.Error != nil {
		return errors.Internal("Failed to update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}

func (r *postgresUserRepository) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&profileRow{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return errors.Internal("Failed to deactivate user", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}

func (r *postgresUserRepository) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	pattern := likePattern(query)
	var rows []profileRow
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?"+likeEscape+" OR LOWER(email) LIKE ?"+likeEscape+" OR LOWER(business_field) LIKE ?"+likeEscape,
			pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to search users", err)
	}
	return usersFromRows(rows), nil
}

func (r *postgresUserRepository) RoleByID(ctx context.Context, id string) (string, error) {
	return r.role(ctx, "id = ?", id)
}

func (r *postgresUserRepository) RoleByEmail(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}
	return r.role(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

func (r *postgresUserRepository) role(ctx context.Context, cond string, arg interface{}) (string, error) {
	var row profileRow
	err := r.db.WithContext(ctx).Select("id", "role").Where(cond, arg).Take(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", errors.Internal("Failed to look up profile", err)
	}
	return row.Role, nil
}

func usersFromRows(rows []profileRow) []*entity.User {
	users := make([]*entity.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toEntity())
	}
	return users
}
