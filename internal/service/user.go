package service

import (
	"context"
	"errors"

	"github.com/dmarkhas/orderflow/internal/hash"
	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/repo"
	"github.com/dmarkhas/orderflow/internal/util"
)

type UserService struct {
	Repo *repo.Repo
}

type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   uint   `json:"role_id,omitempty"`
}

type UpdateUserInput struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type UserPage struct {
	Users   []models.User `json:"users"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// CreateUser hashes the password and resolves the role: an explicit
// role_id is validated, otherwise the live "customer" role is the
// default for new users.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	roleID := in.RoleID
	if roleID == 0 {
		customer, err := s.Repo.RoleByKey(ctx, RoleCustomer)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrNoDefaultRole
			}
			return nil, err
		}
		roleID = customer.ID
	} else {
		if _, err := s.Repo.RoleByID(ctx, roleID); err != nil {
			return nil, err
		}
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		RoleID:       roleID,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.Repo.UserByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		user.Username = in.Username
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.Password != "" {
		pwHash, err := hash.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.Repo.DeleteUser(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, page, perPage int) (*UserPage, error) {
	offset, limit := util.Calculate(page, perPage)
	users, total, err := s.Repo.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Total: total, Page: util.PageOrFirst(page), PerPage: limit}, nil
}
