package handler

import (
	"net/http"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetPasswordResets(w http.ResponseWriter, r *http.Request) {
	var status *domain.PasswordResetStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.PasswordResetStatus(s)
		if st != domain.PasswordResetPending && st != domain.PasswordResetCompleted {
			h.errorResponse(w, r, http.StatusBadRequest, "status must be Pending or Completed")
			return
		}
		status = &st
	}

	pageReq := h.pageRequest(r)
	resets, total, err := h.resets.ListPasswordResets(r.Context(), status, pageReq)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Password reset requests retrieved", domain.NewPage(resets, pageReq, total))
}

// CompletePasswordReset 为申请人生成新密码，通过邮件发送并使旧令牌失效
func (h *Handler) CompletePasswordReset(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid password reset ID")
		return
	}

	reset, err := h.resets.GetPasswordResetByID(r.Context(), id)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if reset.Status != domain.PasswordResetPending {
		h.domainError(w, r, domain.ErrResetCompleted)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), reset.UserID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if h.isSuperAdminAccount(user) && !identity(r).SuperAdmin {
		h.forbidden(w, r, "Only the super admin can modify the super admin account")
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	completedBy := identity(r).UserID
	completedAt := time.Now()
	reset.CompletedBy = &completedBy
	reset.CompletedAt = &completedAt
	if err := h.resets.CompletePasswordReset(r.Context(), reset, string(hashedPassword)); err != nil {
		h.domainError(w, r, err)
		return
	}
	reset.Status = domain.PasswordResetCompleted

	if err := h.sessions.Revoke(r.Context(), user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notify(r.Context(), domain.MailMessage{
		Type: domain.MailPasswordResetComplete,
		To:   user.Email,
		Data: domain.PasswordResetMailData{
			Name:        user.Name,
			NewPassword: password,
		},
	})

	h.successResponse(w, r, "Password reset completed", reset)
}
