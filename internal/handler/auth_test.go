package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

func TestRegisterLoginProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Alice",
		"email":    "  Alice@WorkSync.com ",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[domain.User](t, rec).Data
	assert.Equal(t, "alice@worksync.com", user.Email)
	assert.Equal(t, domain.RoleEmployee, user.Role)
	require.NotNil(t, user.EmployeeID)
	assert.Equal(t, "EMP001", *user.EmployeeID)
	assert.NotContains(t, rec.Body.String(), "password")

	env.mailer.last(t, domain.MailAccountCreated)

	rec = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ALICE@worksync.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[loginData](t, rec).Data
	assert.Equal(t, login.Token, rec.Header().Get(TokenHeader))
	assert.Equal(t, user.ID, login.User.ID)

	rec = env.request(t, http.MethodGet, "/api/auth/user", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@worksync.com", decode[domain.User](t, rec).Data.Email)

	rec = env.request(t, http.MethodPatch, "/api/auth/user", login.Token, map[string]string{"name": "Alice L", "position": "Engineer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.User](t, rec).Data
	assert.Equal(t, "Alice L", updated.Name)
	assert.Equal(t, "Engineer", *updated.Position)
	assert.Equal(t, domain.RoleEmployee, updated.Role)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]string{
		{"email": superEmail, "password": "wrong"},
		{"email": "nobody@worksync.com", "password": superPassword},
	} {
		rec := env.request(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email or password is wrong", decode[any](t, rec).Message)
	}

	rec := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": superEmail})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Bob", "email": "not-an-email", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.register(t, "bob", domain.RoleEmployee, "")
	rec = env.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Bob 2", "email": "BOB@worksync.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists", decode[any](t, rec).Message)
}

func TestRegisterAdminRequiresAdminToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Eve", "email": "eve@worksync.com", "password": "password123", "role": "Admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, employeeToken := env.register(t, "emp", domain.RoleEmployee, "")
	rec = env.request(t, http.MethodPost, "/api/auth/register", employeeToken, map[string]any{
		"name": "Eve", "email": "eve@worksync.com", "password": "password123", "role": "Admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, adminToken := env.register(t, "eve", domain.RoleAdmin, env.superToken(t))
	rec = env.request(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthGate(t *testing.T) {
	env := newTestEnv(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		rec := env.request(t, http.MethodGet, "/api/auth/user", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Access denied", decode[any](t, rec).Message)
	}

	rec := env.request(t, http.MethodGet, "/api/leaves", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "frank", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/auth/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMyPassword(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "grace", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodPatch, "/api/auth/user/password", token, map[string]string{"oldPassword": "wrong", "newPassword": "newpassword"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPatch, "/api/auth/user/password", token, map[string]string{"oldPassword": "password123", "newPassword": "newpassword"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fresh := decode[map[string]string](t, rec).Data["token"]

	// 旧令牌失效，新令牌可用
	assert.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodGet, "/api/auth/user", token, nil).Code)
	assert.Equal(t, http.StatusOK, env.request(t, http.MethodGet, "/api/auth/user", fresh, nil).Code)
	env.login(t, "grace@worksync.com", "newpassword")
}
