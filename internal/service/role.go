package service

import (
	"context"

	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/repo"
)

type RoleService struct {
	Repo *repo.Repo
}

type RoleInput struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

type RoleList struct {
	Roles []models.Role `json:"roles"`
	Total int           `json:"total"`
}

func (s *RoleService) CreateRole(ctx context.Context, in RoleInput) (*models.Role, error) {
	role := &models.Role{Name: in.Name, Key: in.Key, Description: in.Description}
	if err := s.Repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	return s.Repo.RoleByID(ctx, id)
}

func (s *RoleService) GetRoleByKey(ctx context.Context, key string) (*models.Role, error) {
	return s.Repo.RoleByKey(ctx, key)
}

func (s *RoleService) UpdateRole(ctx context.Context, id uint, in RoleInput) (*models.Role, error) {
	role, err := s.Repo.RoleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		role.Name = in.Name
	}
	if in.Key != "" {
		role.Key = in.Key
	}
	if in.Description != "" {
		role.Description = in.Description
	}

	if err := s.Repo.UpdateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) DeleteRole(ctx context.Context, id uint) error {
	return s.Repo.DeleteRole(ctx, id)
}

func (s *RoleService) ListRoles(ctx context.Context) (*RoleList, error) {
	roles, err := s.Repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	return &RoleList{Roles: roles, Total: len(roles)}, nil
}

func (s *RoleService) AssignPermission(ctx context.Context, roleID, permissionID uint) error {
	return s.Repo.AssignPermission(ctx, roleID, permissionID)
}

func (s *RoleService) RemovePermission(ctx context.Context, roleID, permissionID uint) error {
	return s.Repo.RemovePermission(ctx, roleID, permissionID)
}

func (s *RoleService) RolePermissions(ctx context.Context, roleID uint) ([]models.Permission, error) {
	return s.Repo.PermissionsForRole(ctx, roleID)
}
