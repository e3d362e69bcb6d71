package repo

import (
	"context"

	"github.com/dmarkhas/orderflow/internal/models"
)

func (r *Repo) CreateRole(ctx context.Context, role *models.Role) error {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Role{}).
		Where("key = ?", role.Key).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateKey
	}
	return r.DB.WithContext(ctx).Create(role).Error
}

func (r *Repo) RoleByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *Repo) RoleByKey(ctx context.Context, key string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("key = ?", key).First(&role).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (r *Repo) UpdateRole(ctx context.Context, role *models.Role) error {
	return r.DB.WithContext(ctx).Save(role).Error
}

func (r *Repo) DeleteRole(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Role{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *Repo) CreatePermission(ctx context.Context, p *models.Permission) error {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Permission{}).
		Where("key = ?", p.Key).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateKey
	}
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) PermissionByID(ctx context.Context, id uint) (*models.Permission, error) {
	var p models.Permission
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *Repo) UpdatePermission(ctx context.Context, p *models.Permission) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *Repo) DeletePermission(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Permission{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *Repo) AssignPermission(ctx context.Context, roleID, permissionID uint) error {
	if _, err := r.RoleByID(ctx, roleID); err != nil {
		return err
	}
	if _, err := r.PermissionByID(ctx, permissionID); err != nil {
		return err
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateAssignment
	}

	grant := models.RolePermission{RoleID: roleID, PermissionID: permissionID}
	return r.DB.WithContext(ctx).Create(&grant).Error
}

func (r *Repo) RemovePermission(ctx context.Context, roleID, permissionID uint) error {
	res := r.DB.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&models.RolePermission{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PermissionKeysForRole resolves the role's effective permission keys
// through an explicit role_permissions join, no lazy loading.
func (r *Repo) PermissionKeysForRole(ctx context.Context, roleID uint) ([]string, error) {
	var keys []string
	err := r.DB.WithContext(ctx).Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.id ASC").
		Pluck("permissions.key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *Repo) PermissionsForRole(ctx context.Context, roleID uint) ([]models.Permission, error) {
	if _, err := r.RoleByID(ctx, roleID); err != nil {
		return nil, err
	}

	var perms []models.Permission
	err := r.DB.WithContext(ctx).Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.id ASC").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}
