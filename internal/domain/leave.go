package domain

import "time"

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

type LeaveRequest struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"userId"`
	Reason    string      `json:"reason"`
	StartDate time.Time   `json:"startDate"`
	EndDate   time.Time   `json:"endDate"`
	Status    LeaveStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	DecidedBy *int64      `json:"decidedBy,omitempty"`
	DecidedAt *time.Time  `json:"decidedAt,omitempty"`
}

// Overlaps 判断两个闭区间 [start, end] 是否至少共享一天
func (l *LeaveRequest) Overlaps(start, end time.Time) bool {
	return !l.StartDate.After(end) && !l.EndDate.Before(start)
}

// BlocksOverlap 为 true 时该请求会阻止同一用户提交重叠的新请求
func (l *LeaveRequest) BlocksOverlap() bool {
	return l.Status != LeaveRejected
}

type LeaveWithUser struct {
	LeaveRequest
	User UserBrief `json:"user"`
}
