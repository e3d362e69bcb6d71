package service

import (
	"context"
	"errors"
	"time"

	"github.com/dmarkhas/orderflow/internal/hash"
	"github.com/dmarkhas/orderflow/internal/logging"
	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/repo"
	"github.com/dmarkhas/orderflow/internal/tokens"
)

type AuthUserStore interface {
	FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	RoleByID(ctx context.Context, id uint) (*models.Role, error)
}

type TokenStore interface {
	CreateAuthToken(ctx context.Context, t *models.AuthToken) error
	FindByRefreshToken(ctx context.Context, refreshToken string, userID uint) (*models.AuthToken, error)
	DeleteAuthToken(ctx context.Context, id uint) error
	RotateAuthToken(ctx context.Context, oldID uint, next *models.AuthToken) error
	DeleteTokensByUser(ctx context.Context, userID uint) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

// AuthService drives the session lifecycle: login issues a pair, refresh
// rotates it, logout revokes every pair of the user.
type AuthService struct {
	Users      AuthUserStore
	Tokens     TokenStore
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Profile struct {
	UserID    uint         `json:"user_id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	RoleID    uint         `json:"role_id"`
	Role      *models.Role `json:"role,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type TokenResult struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int     `json:"expires_in"`
	User         Profile `json:"user"`
}

// Identity is the authenticated caller with its role as stored right
// now, not as snapshotted into the token.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleID   uint   `json:"role_id"`
	Role     string `json:"role"`
}

func (s *AuthService) Login(ctx context.Context, identifier, password string) (*TokenResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login failed", "reason", "unknown identifier")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "bad password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	role, err := s.Users.RoleByID(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	pair, result, err := s.issuePair(user, role)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.CreateAuthToken(ctx, pair); err != nil {
		return nil, err
	}

	l.Info("login ok", "user_id", user.ID, "role", role.Key)
	return result, nil
}

// Refresh rotates the pair: the presented refresh token is spent even
// though it may still be time-valid, and the new access token carries
// the user's current role claims.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.Secret)
	if err != nil {
		return nil, err
	}
	userID, err := tokens.Subject(claims)
	if err != nil {
		return nil, err
	}

	row, err := s.Tokens.FindByRefreshToken(ctx, refreshToken, userID)
	if err != nil {
		return nil, err
	}

	// The stored expiry is re-checked even though the signature already
	// carries one: a stale row must never mint a new pair.
	if time.Now().After(row.RefreshExpiresAt) {
		if err := s.Tokens.DeleteAuthToken(ctx, row.ID); err != nil {
			l.Error("stale token cleanup failed", "error", err)
		}
		return nil, ErrRefreshExpired
	}

	user, err := s.Users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	role, err := s.Users.RoleByID(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	pair, result, err := s.issuePair(user, role)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.RotateAuthToken(ctx, row.ID, pair); err != nil {
		return nil, err
	}

	l.Info("pair rotated", "user_id", user.ID)
	return result, nil
}

// ValidateAccess checks the bearer token through the codec only; the
// token store is not consulted, so logout does not revoke unexpired
// access tokens. The role is re-read from storage so a role change
// bites on the next request, not the next login.
func (s *AuthService) ValidateAccess(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := tokens.AccessClaimsFromToken(accessToken, s.Secret)
	if err != nil {
		return nil, err
	}
	userID, err := tokens.Subject(claims)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	role, err := s.Users.RoleByID(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RoleID:   role.ID,
		Role:     role.Key,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.Tokens.DeleteTokensByUser(ctx, userID)
}

func (s *AuthService) Cleanup(ctx context.Context) (int64, error) {
	count, err := s.Tokens.DeleteExpiredTokens(ctx)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("expired tokens swept", "count", count)
	return count, nil
}

func (s *AuthService) issuePair(user *models.User, role *models.Role) (*models.AuthToken, *TokenResult, error) {
	now := time.Now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	accessToken, err := tokens.SignAccessToken(user.ID, user.Username, user.Email, role.Key, role.ID, accessExp, s.Secret)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := tokens.SignRefreshToken(user.ID, refreshExp, s.Secret)
	if err != nil {
		return nil, nil, err
	}

	pair := &models.AuthToken{
		UserID:           user.ID,
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}
	result := &TokenResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.AccessTTL.Seconds()),
		User: Profile{
			UserID:    user.ID,
			Username:  user.Username,
			Email:     user.Email,
			RoleID:    role.ID,
			Role:      role,
			CreatedAt: user.CreatedAt,
		},
	}
	return pair, result, nil
}
