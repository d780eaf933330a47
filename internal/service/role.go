package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/internal/repo"
)

type RoleService struct {
	Repo *repo.GormRepo
}

func (s *RoleService) Roles(ctx context.Context, page, size int) ([]models.Role, error) {
	return s.Repo.Roles(ctx, page, size)
}

func (s *RoleService) Create(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{Name: name}
	if err := s.Repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, id uuid.UUID, name string) (*models.Role, error) {
	return s.Repo.UpdateRole(ctx, id, name)
}

func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Repo.DeleteRole(ctx, id)
}

func (s *RoleService) Attach(ctx context.Context, userID, roleID uuid.UUID) error {
	return s.Repo.AttachRole(ctx, userID, roleID)
}

func (s *RoleService) Detach(ctx context.Context, userID, roleID uuid.UUID) error {
	return s.Repo.DetachRole(ctx, userID, roleID)
}
