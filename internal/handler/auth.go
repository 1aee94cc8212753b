package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// 员工编号冲突时最多重试的次数
const employeeIDAttempts = 3

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string   `json:"name" validate:"required,max=100"`
		Email      string   `json:"email" validate:"required,email"`
		Password   string   `json:"password" validate:"required,min=6,max=72"`
		Role       string   `json:"role" validate:"omitempty,oneof=Employee Admin"`
		Position   *string  `json:"position" validate:"omitempty,max=100"`
		Salary     *float64 `json:"salary" validate:"omitempty,gte=0"`
		EmployeeID *string  `json:"employeeId" validate:"omitempty,max=32"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	email := domain.NormalizeEmail(req.Email)
	if email == domain.NormalizeEmail(h.config.SuperAdminEmail) {
		// 超级管理员账户只能在启动时创建
		h.forbidden(w, r, "The super admin email is reserved")
		return
	}

	role := domain.RoleEmployee
	if req.Role == string(domain.RoleAdmin) {
		// 只有管理员才能直接创建管理员账户
		caller, ok := optionalIdentity(r)
		if !ok || !caller.IsAdmin() {
			h.forbidden(w, r, "Only admins can create admin accounts")
			return
		}
		role = domain.RoleAdmin
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		Position:     req.Position,
		Salary:       req.Salary,
		EmployeeID:   req.EmployeeID,
	}

	if err := h.createUser(r.Context(), user); err != nil {
		h.domainError(w, r, err)
		return
	}

	employeeID := ""
	if user.EmployeeID != nil {
		employeeID = *user.EmployeeID
	}
	h.notify(r.Context(), domain.MailMessage{
		Type: domain.MailAccountCreated,
		To:   user.Email,
		Data: domain.AccountCreatedMailData{
			Name:       user.Name,
			Email:      user.Email,
			EmployeeID: employeeID,
			Role:       user.Role,
		},
	})

	h.createdResponse(w, r, "User registered successfully", user)
}

// createUser 在未指定员工编号时自动分配下一个编号，并发分配冲突时重新计算
func (h *Handler) createUser(ctx context.Context, user *domain.User) error {
	if user.EmployeeID != nil {
		return h.users.CreateUser(ctx, user)
	}

	var err error
	for range employeeIDAttempts {
		var n int
		n, err = h.users.GetMaxEmployeeNumber(ctx)
		if err != nil {
			return err
		}
		employeeID := utils.FormatEmployeeID(n + 1)
		user.EmployeeID = &employeeID

		err = h.users.CreateUser(ctx, user)
		if !errors.Is(err, domain.ErrEmployeeIDExists) {
			return err
		}
	}
	return err
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 验证邮箱和密码
	user, err := h.users.GetUserByEmail(r.Context(), domain.NormalizeEmail(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.errorResponse(w, r, http.StatusBadRequest, "Email or password is wrong")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, http.StatusBadRequest, "Email or password is wrong")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	version, err := h.sessions.Version(r.Context(), user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	id := domain.Identity{
		UserID:     user.ID,
		Role:       user.Role,
		SuperAdmin: h.isSuperAdminAccount(user),
	}
	tok, err := h.tokens.Issue(id, version)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set(TokenHeader, tok)
	h.successResponse(w, r, "Login successful", map[string]any{
		"token": tok,
		"user":  user,
	})
}

// Logout 使该用户此前签发的所有令牌失效
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Revoke(r.Context(), identity(r).UserID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Logout successful", nil)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	const msg = "Password reset request submitted, an admin will contact you"

	user, err := h.users.GetUserByEmail(r.Context(), domain.NormalizeEmail(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// 不向客户端暴露邮箱是否存在
			h.createdResponse(w, r, msg, nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	reset := &domain.PasswordResetRequest{
		UserID: user.ID,
		Email:  user.Email,
		Status: domain.PasswordResetPending,
	}
	if err := h.resets.CreatePasswordReset(r.Context(), reset); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.createdResponse(w, r, msg, nil)
}

// notify 投递邮件失败只记录日志，不影响请求结果
func (h *Handler) notify(ctx context.Context, msg domain.MailMessage) {
	if err := h.mailer.Publish(ctx, msg); err != nil {
		slog.Error("投递邮件失败", "type", msg.Type, "to", msg.To, "error", err)
	}
}
