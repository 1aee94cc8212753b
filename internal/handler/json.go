package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/token"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// readOptionalJSON 允许请求体为空
func (h *Handler) readOptionalJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("invalid request body")
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.errorResponseWithData(w, r, status, msg, nil)
}

// errorResponseWithData 用于冲突类错误，data 中带上冲突的记录
func (h *Handler) errorResponseWithData(w http.ResponseWriter, r *http.Request, status int, msg string, data any) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusUnauthorized, "Access denied")
}

func (h *Handler) forbidden(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusForbidden, msg)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusNotFound, msg)
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "Internal server error",
		Data:    nil,
	})
}

// domainError 把 domain 层的错误映射到对应的状态码，未知错误一律按 500 处理
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	var alreadyMarked *domain.AlreadyMarkedError
	var overlap *domain.OverlapError

	switch {
	case errors.As(err, &alreadyMarked):
		h.errorResponseWithData(w, r, http.StatusBadRequest, "Attendance already marked for today", alreadyMarked.Existing)
	case errors.As(err, &overlap):
		h.errorResponseWithData(w, r, http.StatusBadRequest, "Leave request overlaps an existing request", overlap.Existing)
	case errors.Is(err, domain.ErrOverlapConflict):
		h.errorResponse(w, r, http.StatusBadRequest, "Leave request overlaps an existing request")
	case errors.Is(err, domain.ErrInvalidRange):
		h.errorResponse(w, r, http.StatusBadRequest, "Start date must not be after end date")
	case errors.Is(err, domain.ErrEmptyReason):
		h.errorResponse(w, r, http.StatusBadRequest, "Reason is required")
	case errors.Is(err, domain.ErrInvalidStatus):
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid status update")
	case errors.Is(err, domain.ErrNotPending):
		h.errorResponse(w, r, http.StatusBadRequest, "Leave request has already been decided")
	case errors.Is(err, domain.ErrNotCancellable):
		h.errorResponse(w, r, http.StatusBadRequest, "Only pending leave requests can be cancelled")
	case errors.Is(err, domain.ErrEmailExists):
		h.errorResponse(w, r, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, domain.ErrEmployeeIDExists):
		h.errorResponse(w, r, http.StatusBadRequest, "Employee ID already exists")
	case errors.Is(err, domain.ErrResetPending):
		h.errorResponse(w, r, http.StatusBadRequest, "A password reset request is already pending")
	case errors.Is(err, domain.ErrResetCompleted):
		h.errorResponse(w, r, http.StatusBadRequest, "Password reset request is already completed")
	case errors.Is(err, domain.ErrEditConflict):
		h.errorResponse(w, r, http.StatusConflict, "Record was modified by someone else, please retry")
	case errors.Is(err, domain.ErrForbidden):
		h.forbidden(w, r, "Access denied")
	case errors.Is(err, token.ErrInvalidToken):
		h.unauthorized(w, r)
	case errors.Is(err, domain.ErrNotFound):
		h.notFound(w, r, "Record not found")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) createdResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusCreated, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
