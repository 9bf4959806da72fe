package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/identity"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists users, searching username and email
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	query = applySortAndPage(query, filter, UserSortFields)

	var rows []models.UserModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return users, nil
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error
	return count > 0, err
}

func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	if err := saveVersioned(r.db.WithContext(ctx), models.UserModelFromDomain(user), user); err != nil {
		return err
	}
	user.MarkStored()
	return nil
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error
	return count, err
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

// GormLoginAttemptRepository stores the sign-in audit trail
type GormLoginAttemptRepository struct {
	db *gorm.DB
}

func NewGormLoginAttemptRepository(db *gorm.DB) *GormLoginAttemptRepository {
	return &GormLoginAttemptRepository{db: db}
}

func (r *GormLoginAttemptRepository) Save(ctx context.Context, attempt *identity.LoginAttempt) error {
	return r.db.WithContext(ctx).Create(models.LoginAttemptModelFromDomain(attempt)).Error
}

func (r *GormLoginAttemptRepository) CountFailuresSince(ctx context.Context, ip string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoginAttemptModel{}).
		Where("ip_address = ? AND success = ? AND attempted_at >= ?", ip, false, since).
		Count(&count).Error
	return count, err
}

var _ identity.LoginAttemptRepository = (*GormLoginAttemptRepository)(nil)
