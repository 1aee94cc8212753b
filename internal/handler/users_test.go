package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.register(t, "henry", domain.RoleEmployee, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, fmt.Sprintf("/api/admin/users/%d", id)},
		{http.MethodDelete, "/api/admin/users"},
		{http.MethodGet, "/api/admin/next-employee-id"},
		{http.MethodDelete, "/api/admin/attendance"},
		{http.MethodDelete, "/api/admin/leaves"},
		{http.MethodGet, "/api/admin/password-resets"},
		{http.MethodGet, "/api/attendance"},
	} {
		rec := env.request(t, tc.method, tc.path, token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRoleChangeTakesEffectImmediately(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)
	id, token := env.register(t, "ivy", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), super, map[string]any{"role": "Admin", "salary": 5000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.User](t, rec).Data
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, 5000.0, *updated.Salary)

	// 旧令牌中的角色已过时
	assert.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodGet, "/api/auth/user", token, nil).Code)

	fresh := env.login(t, "ivy@worksync.com", "password123")
	assert.Equal(t, http.StatusOK, env.request(t, http.MethodGet, "/api/admin/users", fresh, nil).Code)

	// 降级后立即失去管理员权限
	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), super, map[string]any{"role": "Employee"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodGet, "/api/admin/users", fresh, nil).Code)
}

func TestUpdateUserConflicts(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)
	id, _ := env.register(t, "jack", domain.RoleEmployee, "")
	env.register(t, "kate", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), super, map[string]any{"email": "kate@worksync.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), super, map[string]any{"employeeId": "EMP002"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Employee ID already exists", decode[any](t, rec).Message)

	rec = env.request(t, http.MethodGet, "/api/admin/users/999", super, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/admin/users/abc", super, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuperAdminCarveOut(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)

	adminID, adminToken := env.register(t, "leo", domain.RoleAdmin, super)
	otherAdminID, _ := env.register(t, "mia", domain.RoleAdmin, super)
	employeeID, _ := env.register(t, "ned", domain.RoleEmployee, "")

	superUser, err := env.store.GetUserByEmail(t.Context(), superEmail)
	require.NoError(t, err)

	// 普通管理员可以删除员工，但不能删除管理员
	rec := env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", employeeID), adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", otherAdminID), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 普通管理员不能修改或删除超级管理员
	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", superUser.ID), adminToken, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", superUser.ID), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 超级管理员可以删除管理员，但不能删除自己
	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", otherAdminID), super, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", superUser.ID), super, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", superUser.ID), super, map[string]any{"role": "Employee"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err = env.store.GetUserByID(t.Context(), adminID)
	assert.NoError(t, err)
}

func TestDeleteAllUsersKeepsSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)
	_, adminToken := env.register(t, "olga", domain.RoleAdmin, super)
	env.register(t, "pete", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodDelete, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodDelete, "/api/admin/users", super, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted 2 users.", decode[any](t, rec).Message)

	users, err := env.store.GetAllUsers(t.Context())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, superEmail, users[0].Email)
}

func TestResetUserPassword(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)
	id, token := env.register(t, "quinn", domain.RoleEmployee, "")

	path := fmt.Sprintf("/api/admin/users/%d/reset-password", id)

	// 未指定密码时生成随机密码并在响应中返回
	rec := env.request(t, http.MethodPut, path, super, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	generated := decode[map[string]string](t, rec).Data["newPassword"]
	assert.Len(t, generated, env.cfg.NewUser.PasswordLength)

	assert.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodGet, "/api/auth/user", token, nil).Code)

	msg := env.mailer.last(t, domain.MailPasswordResetComplete)
	assert.Equal(t, generated, msg.Data.(domain.PasswordResetMailData).NewPassword)
	env.login(t, "quinn@worksync.com", generated)

	// 管理员指定的新密码
	rec = env.request(t, http.MethodPut, path, super, map[string]string{"newPassword": "chosen-by-admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode[any](t, rec).Data)
	env.login(t, "quinn@worksync.com", "chosen-by-admin")

	rec = env.request(t, http.MethodPut, path, super, map[string]string{"newPassword": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuperAdminEmailIsReserved(t *testing.T) {
	env := newTestEnv(t)
	// 超级管理员邮箱尚未被任何账户使用
	env.cfg.SuperAdminEmail = "boss@worksync.com"
	admin := env.superToken(t)

	malloryID, malloryToken := env.register(t, "mallory", domain.RoleAdmin, admin)
	otherAdminID, _ := env.register(t, "nina", domain.RoleAdmin, admin)
	employeeID, _ := env.register(t, "oscar", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", malloryID), malloryToken, map[string]any{"email": "boss@worksync.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", employeeID), malloryToken, map[string]any{"email": "BOSS@worksync.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for _, tok := range []string{"", malloryToken} {
		rec = env.request(t, http.MethodPost, "/api/auth/register", tok, map[string]any{
			"name": "boss", "email": "boss@worksync.com", "password": "password123",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}

	_, err := env.store.GetUserByEmail(t.Context(), "boss@worksync.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// mallory 仍然不是超级管理员
	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", otherAdminID), malloryToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNextEmployeeID(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)
	env.register(t, "rose", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodGet, "/api/admin/next-employee-id", super, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EMP002", decode[map[string]string](t, rec).Data["employeeId"])
}
