package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dmarkhas/orderflow/internal/handlers"
	"github.com/dmarkhas/orderflow/internal/hash"
	authmw "github.com/dmarkhas/orderflow/internal/middleware/auth"
	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/repo"
	"github.com/dmarkhas/orderflow/internal/service"
	"github.com/dmarkhas/orderflow/internal/service/search"
)

// fakePublisher records events instead of talking to a broker.
type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := event.(map[string]any); ok {
		if typ, ok := m["type"].(string); ok {
			f.events = append(f.events, typ)
		}
	}
	return nil
}

func (f *fakePublisher) seen(typ string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e == typ {
			return true
		}
	}
	return false
}

type apiEnv struct {
	e        *echo.Echo
	repo     *repo.Repo
	producer *fakePublisher
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.AuthToken{},
		&models.Order{},
	))

	r := repo.New(db)
	producer := &fakePublisher{}

	authSvc := &service.AuthService{
		Users:      r,
		Tokens:     r,
		Secret:     []byte("router-test-secret"),
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	authzSvc := &service.AuthzService{Repo: r}

	// The index errors against this dead address are logged, not fatal.
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{"http://127.0.0.1:9"}})
	require.NoError(t, err)
	searchSvc := &search.Service{ES: es, Index: "orders"}

	mw := &authmw.Middleware{Auth: authSvc, Authz: authzSvc}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:       &handlers.AuthHandler{Auth: authSvc, Authz: authzSvc, Producer: producer},
		UserHandler:       &handlers.UserHandler{Users: &service.UserService{Repo: r}, Authz: authzSvc, Producer: producer},
		OrderHandler:      &handlers.OrderHandler{Orders: &service.OrderService{Repo: r}, Authz: authzSvc, Producer: producer, Search: searchSvc},
		RoleHandler:       &handlers.RoleHandler{Roles: &service.RoleService{Repo: r}},
		PermissionHandler: &handlers.PermissionHandler{Permissions: &service.PermissionService{Repo: r}},
		SearchHandler:     &handlers.SearchHandler{Search: searchSvc},
		MW:                mw,
	})

	env := &apiEnv{e: e, repo: r, producer: producer}
	env.seedRBAC(t)
	return env
}

// seedRBAC installs the two stock roles with the grants the routes
// under test check for.
func (env *apiEnv) seedRBAC(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	admin := &models.Role{Name: "Administrator", Key: service.RoleAdmin, Description: "full access"}
	customer := &models.Role{Name: "Customer", Key: service.RoleCustomer, Description: "own resources"}
	require.NoError(t, env.repo.CreateRole(ctx, admin))
	require.NoError(t, env.repo.CreateRole(ctx, customer))

	grants := map[string][]uint{
		"order:create": {admin.ID, customer.ID},
		"user:list":    {admin.ID},
		"role:create":  {admin.ID},
		"role:list":    {admin.ID},
	}
	for key, roleIDs := range grants {
		perm := &models.Permission{Name: key, Key: key, Description: key}
		require.NoError(t, env.repo.CreatePermission(ctx, perm))
		for _, roleID := range roleIDs {
			require.NoError(t, env.repo.AssignPermission(ctx, roleID, perm.ID))
		}
	}
}

func (env *apiEnv) seedUser(t *testing.T, username, password, roleKey string) *models.User {
	t.Helper()
	ctx := context.Background()

	role, err := env.repo.RoleByKey(ctx, roleKey)
	require.NoError(t, err)
	h, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: h, RoleID: role.ID}
	require.NoError(t, env.repo.CreateUser(ctx, u))
	return u
}

func (env *apiEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *apiEnv) login(t *testing.T, username, password string) (access, refresh string) {
	t.Helper()

	rec := env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.AccessToken, res.RefreshToken
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	env.seedUser(t, "alice", "secretpw1", service.RoleCustomer)

	rec := env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "secretpw1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res["access_token"])
	assert.NotEmpty(t, res["refresh_token"])
	assert.Equal(t, "bearer", res["token_type"])
	assert.True(t, env.producer.seen("user_logged_in"))

	rec = env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateUserEndpoint(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secretpw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.producer.seen("user_created"))
	// The hash never leaks into the payload.
	assert.NotContains(t, rec.Body.String(), "password")

	// Short password fails validation.
	rec = env.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"username": "bob", "email": "bob@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate username is a bad request, not a server error.
	rec = env.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"username": "alice", "email": "alice2@example.com", "password": "secretpw1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	env.seedUser(t, "alice", "secretpw1", service.RoleCustomer)
	access, _ := env.login(t, "alice", "secretpw1")

	rec := env.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Username    string   `json:"username"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, service.RoleCustomer, res.Role)
	assert.Contains(t, res.Permissions, "order:create")

	rec = env.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpoint_SingleUse(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	env.seedUser(t, "alice", "secretpw1", service.RoleCustomer)
	_, refresh := env.login(t, "alice", "secretpw1")

	rec := env.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.producer.seen("token_refreshed"))

	// Replaying the spent token is an auth failure.
	rec = env.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	env.seedUser(t, "alice", "secretpw1", service.RoleCustomer)
	access, refresh := env.login(t, "alice", "secretpw1")

	rec := env.do(http.MethodPost, "/api/v1/auth/logout", access, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, env.producer.seen("user_logged_out"))

	// The refresh token died with the session.
	rec = env.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The access token is still accepted until it expires on its own.
	rec = env.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Logout twice is fine.
	rec = env.do(http.MethodPost, "/api/v1/auth/logout", access, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	env.seedUser(t, "alice", "secretpw1", service.RoleCustomer)
	access, _ := env.login(t, "alice", "secretpw1")

	rec := env.do(http.MethodPost, "/api/v1/auth/validate", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, true, res["valid"])
	assert.Equal(t, "alice", res["username"])

	// Bad tokens come back as a payload, never an error status.
	rec = env.do(http.MethodPost, "/api/v1/auth/validate", "garbage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, false, res["valid"])

	rec = env.do(http.MethodPost, "/api/v1/auth/validate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, false, res["valid"])
}

func TestOrderOwnership(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	env.seedUser(t, "alice", "secretpw1", service.RoleCustomer)
	env.seedUser(t, "bob", "secretpw1", service.RoleCustomer)
	env.seedUser(t, "root", "secretpw1", service.RoleAdmin)

	alice, _ := env.login(t, "alice", "secretpw1")
	bob, _ := env.login(t, "bob", "secretpw1")
	root, _ := env.login(t, "root", "secretpw1")

	rec := env.do(http.MethodPost, "/api/v1/orders", alice, map[string]any{"total_amount": 42.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.producer.seen("order_created"))

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	path := "/api/v1/orders/" + strconvID(order.ID)

	// The owner and the admin read it, another customer does not.
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, alice, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, root, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, path, bob, nil).Code)

	// Status changes are an admin-only gate.
	rec = env.do(http.MethodPatch, path+"/status", alice, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(http.MethodPatch, path+"/status", root, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPatch, path+"/status", root, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPermissionGates(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	env.seedUser(t, "alice", "secretpw1", service.RoleCustomer)
	env.seedUser(t, "root", "secretpw1", service.RoleAdmin)

	alice, _ := env.login(t, "alice", "secretpw1")
	root, _ := env.login(t, "root", "secretpw1")

	// user:list is granted to admins only.
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/v1/users", alice, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/users", root, nil).Code)

	// Cleanup is an admin role gate.
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/v1/auth/cleanup", alice, nil).Code)
	rec := env.do(http.MethodPost, "/api/v1/auth/cleanup", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cleaned up")

	// Role management goes through permission keys.
	rec = env.do(http.MethodPost, "/api/v1/roles", root, map[string]string{
		"name": "Support", "key": "support", "description": "support staff",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/v1/roles", alice, map[string]string{
		"name": "X", "key": "x", "description": "x",
	}).Code)

	// Duplicate role key maps to a bad request.
	rec = env.do(http.MethodPost, "/api/v1/roles", root, map[string]string{
		"name": "Support 2", "key": "support", "description": "dup",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)

	rec := env.do(http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", "", nil).Code)
}

func strconvID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
