package handler

import (
	"net/http"

	"github.com/worksync-dev/worksync/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "Profile retrieved successfully", myInfo)
}

// UpdateMyInfo 只允许修改姓名和职位，其余字段需要管理员修改
func (h *Handler) UpdateMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
		Position *string `json:"position" validate:"omitempty,max=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		myInfo.Name = *req.Name
	}
	if req.Position != nil {
		myInfo.Position = req.Position
	}

	if err := h.users.UpdateUser(r.Context(), myInfo); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "Profile updated successfully", myInfo)
}

// UpdateMyPassword 修改密码后旧令牌全部失效，响应中返回新的令牌
func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(myInfo.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Old password is wrong")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo.PasswordHash = string(hashedPassword)

	if err := h.users.UpdateUser(r.Context(), myInfo); err != nil {
		h.domainError(w, r, err)
		return
	}

	tok, err := h.reissue(r, myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set(TokenHeader, tok)
	h.successResponse(w, r, "Password updated successfully", map[string]any{"token": tok})
}

// reissue 递增会话版本后为当前用户签发新令牌
func (h *Handler) reissue(r *http.Request, user *domain.User) (string, error) {
	if err := h.sessions.Revoke(r.Context(), user.ID); err != nil {
		return "", err
	}
	version, err := h.sessions.Version(r.Context(), user.ID)
	if err != nil {
		return "", err
	}
	return h.tokens.Issue(domain.Identity{
		UserID:     user.ID,
		Role:       user.Role,
		SuperAdmin: h.isSuperAdminAccount(user),
	}, version)
}
