package handler

import (
	"net/http"

	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/ledger"
	"github.com/worksync-dev/worksync/backend/internal/utils"
)

func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason    string `json:"reason" validate:"required,max=500"`
		StartDate string `json:"startDate" validate:"required"`
		EndDate   string `json:"endDate" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid startDate: "+err.Error())
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid endDate: "+err.Error())
		return
	}

	leave, err := h.leaves.Submit(r.Context(), identity(r).UserID, req.Reason, start, end)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.createdResponse(w, r, "Leave request submitted successfully", leave)
}

// GetLeaves 中管理员看到所有请求，其他人只看到自己的
func (h *Handler) GetLeaves(w http.ResponseWriter, r *http.Request) {
	page, err := h.leaves.List(r.Context(), identity(r), h.pageRequest(r))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "Leave requests retrieved", page)
}

func (h *Handler) DecideLeave(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid leave ID")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	leave, err := h.leaves.SetStatus(r.Context(), id, domain.LeaveStatus(req.Status), identity(r))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	if user, err := h.users.GetUserByID(r.Context(), leave.UserID); err == nil {
		h.notify(r.Context(), domain.MailMessage{
			Type: domain.MailLeaveDecided,
			To:   user.Email,
			Data: domain.LeaveDecidedMailData{
				Name:      user.Name,
				Reason:    leave.Reason,
				StartDate: leave.StartDate.Format(ledger.DayLayout),
				EndDate:   leave.EndDate.Format(ledger.DayLayout),
				Status:    leave.Status,
			},
		})
	}

	h.successResponse(w, r, "Leave request "+string(leave.Status), leave)
}

func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid leave ID")
		return
	}

	if err := h.leaves.Cancel(r.Context(), id, identity(r)); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "Leave request cancelled successfully", nil)
}
