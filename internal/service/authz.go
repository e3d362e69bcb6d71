package service

import (
	"context"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

type RBACStore interface {
	PermissionKeysForRole(ctx context.Context, roleID uint) ([]string, error)
}

// AuthzService answers gate questions over an already-authenticated
// identity. It never touches tokens; that layer sits below it.
type AuthzService struct {
	Repo RBACStore
}

func (s *AuthzService) PermissionsFor(ctx context.Context, roleID uint) ([]string, error) {
	return s.Repo.PermissionKeysForRole(ctx, roleID)
}

func (s *AuthzService) HasRole(identity *Identity, allowed ...string) bool {
	for _, key := range allowed {
		if identity.Role == key {
			return true
		}
	}
	return false
}

// HasAnyPermission is true when the role holds at least one of the
// required keys. An empty required set grants nothing.
func (s *AuthzService) HasAnyPermission(ctx context.Context, identity *Identity, required ...string) (bool, error) {
	if len(required) == 0 {
		return false, nil
	}

	keys, err := s.Repo.PermissionKeysForRole(ctx, identity.RoleID)
	if err != nil {
		return false, err
	}

	held := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		held[k] = struct{}{}
	}
	for _, k := range required {
		if _, ok := held[k]; ok {
			return true, nil
		}
	}
	return false, nil
}

// OwnsResource is the uniform ownership gate: admins reach everything,
// everyone else only their own rows.
func (s *AuthzService) OwnsResource(identity *Identity, ownerID uint) bool {
	if identity.Role == RoleAdmin {
		return true
	}
	return identity.UserID == ownerID
}
