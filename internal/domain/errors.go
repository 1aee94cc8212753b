package domain

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrEditConflict       = errors.New("record was modified concurrently")
	ErrEmailExists        = errors.New("email already exists")
	ErrEmployeeIDExists   = errors.New("employee id already exists")
	ErrInvalidCredentials = errors.New("email or password is wrong")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrAlreadyMarked      = errors.New("attendance already marked today")
	ErrInvalidRange       = errors.New("start date must not be after end date")
	ErrEmptyReason        = errors.New("leave reason is required")
	ErrOverlapConflict    = errors.New("leave request overlaps an existing request")
	ErrNotPending         = errors.New("leave request has already been decided")
	ErrNotCancellable     = errors.New("only pending leave requests can be cancelled")
	ErrResetPending       = errors.New("a password reset request is already pending")
	ErrResetCompleted     = errors.New("password reset request is already completed")
)

// AlreadyMarkedError 携带当天已存在的考勤记录，客户端可以直接展示而无需再次查询
type AlreadyMarkedError struct {
	Existing *AttendanceRecord
}

func (e *AlreadyMarkedError) Error() string {
	return ErrAlreadyMarked.Error()
}

func (e *AlreadyMarkedError) Unwrap() error {
	return ErrAlreadyMarked
}

// OverlapError 携带与新请求冲突的已有请假记录
type OverlapError struct {
	Existing *LeaveRequest
}

func (e *OverlapError) Error() string {
	return ErrOverlapConflict.Error()
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlapConflict
}
