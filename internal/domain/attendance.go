package domain

import "time"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceHalfDay AttendanceStatus = "Half-day"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceHalfDay:
		return true
	}
	return false
}

type AttendanceRecord struct {
	ID         int64            `json:"id"`
	UserID     int64            `json:"userId"`
	Date       time.Time        `json:"date"`
	Day        string           `json:"day"` // YYYY-MM-DD，按考勤时区计算
	Status     AttendanceStatus `json:"status"`
	ModifiedBy *int64           `json:"modifiedBy,omitempty"`
	ModifiedAt *time.Time       `json:"modifiedAt,omitempty"`
}

// Corrected 表示记录是否被管理员修改过，修改标记一旦写入就不会被清除
func (a *AttendanceRecord) Corrected() bool {
	return a.ModifiedBy != nil
}

type AttendanceWithUser struct {
	AttendanceRecord
	User UserBrief `json:"user"`
}

// AttendanceFilter 中 From/To 优先于 Date
type AttendanceFilter struct {
	From *time.Time
	To   *time.Time
	Date *time.Time
}
