package handler

import (
	"net/http"

	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Users retrieved successfully", users)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "User retrieved successfully", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Name       *string  `json:"name" validate:"omitempty,min=1,max=100"`
		Email      *string  `json:"email" validate:"omitempty,email"`
		Role       *string  `json:"role" validate:"omitempty,oneof=Employee Admin"`
		Position   *string  `json:"position" validate:"omitempty,max=100"`
		Salary     *float64 `json:"salary" validate:"omitempty,gte=0"`
		EmployeeID *string  `json:"employeeId" validate:"omitempty,min=1,max=32"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 角色或邮箱变化会影响令牌中的身份，需要让旧令牌失效
	revoke := false

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if email != user.Email {
			if h.isSuperAdminAccount(user) {
				h.forbidden(w, r, "The super admin email cannot be changed")
				return
			}
			user.Email = email
			revoke = true
		}
	}
	if req.Role != nil && domain.Role(*req.Role) != user.Role {
		if h.isSuperAdminAccount(user) {
			h.forbidden(w, r, "The super admin role cannot be changed")
			return
		}
		user.Role = domain.Role(*req.Role)
		revoke = true
	}
	if req.Position != nil {
		user.Position = req.Position
	}
	if req.Salary != nil {
		user.Salary = req.Salary
	}
	if req.EmployeeID != nil {
		user.EmployeeID = req.EmployeeID
	}

	// 超级管理员邮箱保留给超级管理员账户，其他账户不能改用该邮箱
	if revoke && user.Email == domain.NormalizeEmail(h.config.SuperAdminEmail) && !identity(r).SuperAdmin {
		h.forbidden(w, r, "The super admin email is reserved")
		return
	}

	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		h.domainError(w, r, err)
		return
	}

	if revoke {
		if err := h.sessions.Revoke(r.Context(), user.ID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "User updated successfully", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if h.isSuperAdminAccount(user) {
		h.forbidden(w, r, "The super admin account cannot be deleted")
		return
	}
	if user.Role == domain.RoleAdmin && !identity(r).SuperAdmin {
		h.forbidden(w, r, "Only the super admin can delete admin accounts")
		return
	}

	if err := h.users.DeleteUser(r.Context(), user.ID); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.sessions.Revoke(r.Context(), user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "User deleted successfully", nil)
}

// DeleteAllUsers 删除除超级管理员以外的所有账户，关联的考勤和请假一并删除
func (h *Handler) DeleteAllUsers(w http.ResponseWriter, r *http.Request) {
	if !identity(r).SuperAdmin {
		h.forbidden(w, r, "Only the super admin can delete all users")
		return
	}

	ids, err := h.users.DeleteUsersExcept(r.Context(), domain.NormalizeEmail(h.config.SuperAdminEmail))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	for _, id := range ids {
		if err := h.sessions.Revoke(r.Context(), id); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, pluralDeleted(len(ids), "user"), map[string]any{"deletedCount": len(ids)})
}

// ResetUserPassword 使用管理员指定的新密码，未指定时生成随机密码并在响应中返回
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		NewPassword string `json:"newPassword" validate:"omitempty,min=6,max=72"`
	}

	if err := h.readOptionalJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	password := req.NewPassword
	var data any
	if password == "" {
		password = utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
		data = map[string]string{"newPassword": password}
	}

	if err := h.setPassword(r, user, password); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "Password reset successfully", data)
}

func (h *Handler) setPassword(r *http.Request, user *domain.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		return err
	}
	if err := h.sessions.Revoke(r.Context(), user.ID); err != nil {
		return err
	}

	h.notify(r.Context(), domain.MailMessage{
		Type: domain.MailPasswordResetComplete,
		To:   user.Email,
		Data: domain.PasswordResetMailData{
			Name:        user.Name,
			NewPassword: password,
		},
	})
	return nil
}

func (h *Handler) GetNextEmployeeID(w http.ResponseWriter, r *http.Request) {
	n, err := h.users.GetMaxEmployeeNumber(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Next employee ID generated", map[string]string{
		"employeeId": utils.FormatEmployeeID(n + 1),
	})
}
