// Package ledger 实现考勤与请假两个账本的准入规则。
//
// 不变量（每人每天至多一条考勤、同一用户的非驳回请假互不重叠）最终由存储层
// 的约束保证，这里的预检查只用于给出带上下文的错误。
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

type AttendanceStore interface {
	GetAttendanceByUserAndDay(ctx context.Context, userID int64, day string) (*domain.AttendanceRecord, error)
	// InsertAttendance 在 (user, day) 已存在时返回 domain.ErrAlreadyMarked
	InsertAttendance(ctx context.Context, record *domain.AttendanceRecord) error
	GetAttendanceByID(ctx context.Context, id int64) (*domain.AttendanceRecord, error)
	UpdateAttendanceStatus(ctx context.Context, record *domain.AttendanceRecord) error
	ListAttendanceByUser(ctx context.Context, userID int64, page domain.PageRequest) ([]*domain.AttendanceRecord, int64, error)
	ListAttendance(ctx context.Context, filter domain.AttendanceFilter, page domain.PageRequest) ([]*domain.AttendanceWithUser, int64, error)
	DeleteAllAttendance(ctx context.Context) (int64, error)
}

const DayLayout = "2006-01-02"

type Attendance struct {
	store AttendanceStore
	loc   *time.Location
	now   func() time.Time
}

func NewAttendance(store AttendanceStore, loc *time.Location) *Attendance {
	if loc == nil {
		loc = time.Local
	}
	return &Attendance{store: store, loc: loc, now: time.Now}
}

// Today 返回当前考勤日的 [start, end) 区间
func (a *Attendance) Today() (time.Time, time.Time) {
	return DayWindow(a.now(), a.loc)
}

func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func (a *Attendance) dayKey(t time.Time) string {
	return t.In(a.loc).Format(DayLayout)
}

func (a *Attendance) HasMarkedToday(ctx context.Context, userID int64) (bool, *domain.AttendanceRecord, error) {
	record, err := a.store.GetAttendanceByUserAndDay(ctx, userID, a.dayKey(a.now()))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, record, nil
}

func (a *Attendance) Mark(ctx context.Context, userID int64, status domain.AttendanceStatus) (*domain.AttendanceRecord, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	marked, existing, err := a.HasMarkedToday(ctx, userID)
	if err != nil {
		return nil, err
	}
	if marked {
		return nil, &domain.AlreadyMarkedError{Existing: existing}
	}

	now := a.now()
	record := &domain.AttendanceRecord{
		UserID: userID,
		Date:   now,
		Day:    a.dayKey(now),
		Status: status,
	}

	if err := a.store.InsertAttendance(ctx, record); err != nil {
		if !errors.Is(err, domain.ErrAlreadyMarked) {
			return nil, err
		}
		// 并发提交时由唯一约束兜底，取回先写入的那条记录
		existing, getErr := a.store.GetAttendanceByUserAndDay(ctx, userID, record.Day)
		if getErr != nil {
			return nil, fmt.Errorf("load existing attendance: %w", getErr)
		}
		return nil, &domain.AlreadyMarkedError{Existing: existing}
	}

	return record, nil
}

func (a *Attendance) ListForUser(ctx context.Context, userID int64, page domain.PageRequest) (*domain.Page[*domain.AttendanceRecord], error) {
	records, total, err := a.store.ListAttendanceByUser(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(records, page, total), nil
}

// ListAll 中单日过滤按 UTC 整天解释
func (a *Attendance) ListAll(ctx context.Context, filter domain.AttendanceFilter, page domain.PageRequest) (*domain.Page[*domain.AttendanceWithUser], error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.ErrInvalidRange
	}
	if filter.From != nil || filter.To != nil {
		filter.Date = nil
	}

	records, total, err := a.store.ListAttendance(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(records, page, total), nil
}

func (a *Attendance) Correct(ctx context.Context, id int64, status domain.AttendanceStatus, modifierID int64) (*domain.AttendanceRecord, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	record, err := a.store.GetAttendanceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := a.now()
	record.Status = status
	record.ModifiedBy = &modifierID
	record.ModifiedAt = &now

	if err := a.store.UpdateAttendanceStatus(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (a *Attendance) DeleteAll(ctx context.Context) (int64, error) {
	return a.store.DeleteAllAttendance(ctx)
}
