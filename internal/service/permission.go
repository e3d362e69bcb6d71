package service

import (
	"context"

	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/repo"
)

type PermissionService struct {
	Repo *repo.Repo
}

type PermissionInput struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

type PermissionList struct {
	Permissions []models.Permission `json:"permissions"`
	Total       int                 `json:"total"`
}

func (s *PermissionService) CreatePermission(ctx context.Context, in PermissionInput) (*models.Permission, error) {
	p := &models.Permission{Name: in.Name, Key: in.Key, Description: in.Description}
	if err := s.Repo.CreatePermission(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PermissionService) GetPermission(ctx context.Context, id uint) (*models.Permission, error) {
	return s.Repo.PermissionByID(ctx, id)
}

func (s *PermissionService) UpdatePermission(ctx context.Context, id uint, in PermissionInput) (*models.Permission, error) {
	p, err := s.Repo.PermissionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Key != "" {
		p.Key = in.Key
	}
	if in.Description != "" {
		p.Description = in.Description
	}

	if err := s.Repo.UpdatePermission(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PermissionService) DeletePermission(ctx context.Context, id uint) error {
	return s.Repo.DeletePermission(ctx, id)
}

func (s *PermissionService) ListPermissions(ctx context.Context) (*PermissionList, error) {
	perms, err := s.Repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return &PermissionList{Permissions: perms, Total: len(perms)}, nil
}
