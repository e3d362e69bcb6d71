package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmarkhas/orderflow/internal/config"
	"github.com/dmarkhas/orderflow/internal/hash"
	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/repo"
	"github.com/dmarkhas/orderflow/pkg/db"
)

type seedPermission struct {
	Name        string
	Key         string
	Description string
}

var defaultPermissions = []seedPermission{
	{"Create User", "user:create", "Create new users in the system"},
	{"Read User", "user:read", "View user information"},
	{"Update User", "user:update", "Update user information"},
	{"Delete User", "user:delete", "Delete users from the system"},
	{"List Users", "user:list", "List all users in the system"},
	{"Read Own Profile", "user:read_own", "View own user profile"},
	{"Update Own Profile", "user:update_own", "Update own user profile"},
	{"Delete Own Account", "user:delete_own", "Delete own user account"},
	{"Create Order", "order:create", "Create new orders"},
	{"Read Order", "order:read", "View order information"},
	{"Update Order", "order:update", "Update order information"},
	{"Delete Order", "order:delete", "Delete orders"},
	{"List Orders", "order:list", "List all orders in the system"},
	{"Read Own Orders", "order:read_own", "View own orders"},
	{"Update Own Orders", "order:update_own", "Update own orders"},
	{"Delete Own Orders", "order:delete_own", "Delete own orders"},
	{"Update Order Status", "order:update_status", "Update order status"},
	{"Create Role", "role:create", "Create new roles"},
	{"Read Role", "role:read", "View role information"},
	{"Update Role", "role:update", "Update role information"},
	{"Delete Role", "role:delete", "Delete roles"},
	{"List Roles", "role:list", "List all roles in the system"},
	{"Read Role Permissions", "role:read_permissions", "View permissions assigned to roles"},
	{"Create Permission", "permission:create", "Create new permissions"},
	{"Read Permission", "permission:read", "View permission information"},
	{"Update Permission", "permission:update", "Update permission information"},
	{"Delete Permission", "permission:delete", "Delete permissions"},
	{"List Permissions", "permission:list", "List all permissions in the system"},
	{"Assign Permission to Role", "role_permission:assign", "Assign permissions to roles"},
	{"Remove Permission from Role", "role_permission:remove", "Remove permissions from roles"},
}

// Customers only manage themselves; admins get every key.
var customerPermissionKeys = []string{
	"user:read_own", "user:update_own", "user:delete_own",
	"order:create", "order:read_own", "order:update_own", "order:delete_own",
	"role:read", "role:list",
	"permission:read", "permission:list",
}

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	database, err := db.Open(ctx, configuration.DSN())
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := database.AutoMigrate(
		&models.Role{}, &models.Permission{}, &models.RolePermission{},
		&models.User{}, &models.AuthToken{}, &models.Order{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	r := repo.New(database)

	if err := seed(ctx, r); err != nil {
		log.Fatalf("seeding error: %v", err)
	}
	log.Println("seeding complete")
}

func seed(ctx context.Context, r *repo.Repo) error {
	roles := []models.Role{
		{Name: "Administrator", Key: "admin", Description: "Full system access with all permissions"},
		{Name: "Customer", Key: "customer", Description: "Limited access for customer operations"},
	}
	for i := range roles {
		if err := r.CreateRole(ctx, &roles[i]); err != nil {
			if errors.Is(err, repo.ErrDuplicateKey) {
				log.Printf("role %s already exists, skipping", roles[i].Key)
				continue
			}
			return err
		}
	}

	for _, p := range defaultPermissions {
		perm := models.Permission{Name: p.Name, Key: p.Key, Description: p.Description}
		if err := r.CreatePermission(ctx, &perm); err != nil {
			if errors.Is(err, repo.ErrDuplicateKey) {
				continue
			}
			return err
		}
	}

	admin, err := r.RoleByKey(ctx, "admin")
	if err != nil {
		return err
	}
	customer, err := r.RoleByKey(ctx, "customer")
	if err != nil {
		return err
	}

	perms, err := r.ListPermissions(ctx)
	if err != nil {
		return err
	}
	byKey := make(map[string]uint, len(perms))
	for _, p := range perms {
		byKey[p.Key] = p.ID
	}

	for _, p := range perms {
		if err := assign(ctx, r, admin.ID, p.ID); err != nil {
			return err
		}
	}
	for _, key := range customerPermissionKeys {
		id, ok := byKey[key]
		if !ok {
			log.Printf("permission %s not found, skipping", key)
			continue
		}
		if err := assign(ctx, r, customer.ID, id); err != nil {
			return err
		}
	}

	return seedAdminUser(ctx, r, admin.ID)
}

func assign(ctx context.Context, r *repo.Repo, roleID, permissionID uint) error {
	err := r.AssignPermission(ctx, roleID, permissionID)
	if errors.Is(err, repo.ErrDuplicateAssignment) {
		return nil
	}
	return err
}

func seedAdminUser(ctx context.Context, r *repo.Repo, adminRoleID uint) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("ADMIN_PASSWORD not set, using default (change it)")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: pwHash,
		RoleID:       adminRoleID,
	}
	if err := r.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			log.Println("admin user already exists, skipping")
			return nil
		}
		return err
	}
	log.Println("default admin user created: admin@example.com")
	return nil
}
