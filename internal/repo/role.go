package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/pkg/util"
)

func (r *GormRepo) CreateRole(ctx context.Context, role *models.Role) error {
	err := r.DB.WithContext(ctx).Create(role).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrRoleExists
	}
	return err
}

func (r *GormRepo) RoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) Roles(ctx context.Context, page, size int) ([]models.Role, error) {
	offset, limit := util.Calculate(page, size)

	var roles []models.Role
	err := r.DB.WithContext(ctx).
		Order("name").
		Offset(offset).
		Limit(limit).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *GormRepo) UpdateRole(ctx context.Context, id uuid.UUID, name string) (*models.Role, error) {
	role, err := r.RoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Name = name
	if err := r.DB.WithContext(ctx).Save(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRoleExists
		}
		return nil, err
	}
	return role, nil
}

func (r *GormRepo) DeleteRole(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Role{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *GormRepo) AttachRole(ctx context.Context, userID, roleID uuid.UUID) error {
	user, err := r.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	role, err := r.RoleByID(ctx, roleID)
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(user).Association("Roles").Append(role)
}

func (r *GormRepo) DetachRole(ctx context.Context, userID, roleID uuid.UUID) error {
	user, err := r.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	role, err := r.RoleByID(ctx, roleID)
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(user).Association("Roles").Delete(role)
}
