package handler

import (
	"net/http"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/utils"
)

func (h *Handler) pageRequest(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	return utils.ParsePageRequest(q.Get("page"), q.Get("limit"), h.config.Pagination.DefaultLimit, h.config.Pagination.MaxLimit)
}

func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID *int64 `json:"userId"`
		Status string `json:"status" validate:"required,oneof=Present Absent Half-day"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	caller := identity(r)
	userID := caller.UserID
	if req.UserID != nil && *req.UserID != caller.UserID {
		// 管理员可以代为打卡
		if !caller.IsAdmin() {
			h.forbidden(w, r, "You can only mark your own attendance")
			return
		}
		userID = *req.UserID
	}

	record, err := h.attendance.Mark(r.Context(), userID, domain.AttendanceStatus(req.Status))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.createdResponse(w, r, "Attendance marked successfully", record)
}

func (h *Handler) GetTodayAttendance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(TargetUserIDCtx).(int64)

	marked, record, err := h.attendance.HasMarkedToday(r.Context(), userID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Today's attendance retrieved", map[string]any{
		"hasAttendance": marked,
		"record":        record,
	})
}

func (h *Handler) GetUserAttendance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(TargetUserIDCtx).(int64)

	page, err := h.attendance.ListForUser(r.Context(), userID, h.pageRequest(r))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "Attendance records retrieved", page)
}

// GetAllAttendance 支持 date 单日过滤或 from/to 闭区间过滤
func (h *Handler) GetAllAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter domain.AttendanceFilter
	for _, p := range []struct {
		name  string
		dst   **time.Time
		parse func(string) (time.Time, error)
	}{
		{"date", &filter.Date, utils.ParseDate},
		{"from", &filter.From, utils.ParseDate},
		{"to", &filter.To, utils.ParseEndDate},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := p.parse(v)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "Invalid "+p.name+": "+err.Error())
			return
		}
		*p.dst = &t
	}

	page, err := h.attendance.ListAll(r.Context(), filter, h.pageRequest(r))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "Attendance records retrieved", page)
}

func (h *Handler) CorrectAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid attendance ID")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=Present Absent Half-day"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	record, err := h.attendance.Correct(r.Context(), id, domain.AttendanceStatus(req.Status), identity(r).UserID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "Attendance updated successfully", record)
}
