package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)
	_, token := env.register(t, "amy", domain.RoleEmployee, "")

	// 未知邮箱返回同样的结果
	rec := env.request(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ghost@worksync.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	unknownMsg := decode[any](t, rec).Message

	rec = env.request(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "AMY@worksync.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, unknownMsg, decode[any](t, rec).Message)

	rec = env.request(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "amy@worksync.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/admin/password-resets?status=Pending", super, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.Page[domain.PasswordResetWithUser]](t, rec).Data
	require.Len(t, page.Items, 1)
	reset := page.Items[0]
	assert.Equal(t, "amy@worksync.com", reset.User.Email)

	rec = env.request(t, http.MethodGet, "/api/admin/password-resets?status=Whatever", super, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := fmt.Sprintf("/api/admin/password-resets/%d/complete", reset.ID)
	rec = env.request(t, http.MethodPut, path, super, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.PasswordResetCompleted, decode[domain.PasswordResetRequest](t, rec).Data.Status)

	rec = env.request(t, http.MethodPut, path, super, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodGet, "/api/auth/user", token, nil).Code)

	data := env.mailer.last(t, domain.MailPasswordResetComplete).Data.(domain.PasswordResetMailData)
	env.login(t, "amy@worksync.com", data.NewPassword)

	rec = env.request(t, http.MethodPut, "/api/admin/password-resets/999/complete", super, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
