package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

type LeaveStore interface {
	// FindOverlappingLeave 只考虑非 Rejected 的请求，没有时返回 domain.ErrNotFound
	FindOverlappingLeave(ctx context.Context, userID int64, start, end time.Time) (*domain.LeaveRequest, error)
	// InsertLeave 在违反重叠约束时返回 domain.ErrOverlapConflict
	InsertLeave(ctx context.Context, leave *domain.LeaveRequest) error
	GetLeaveByID(ctx context.Context, id int64) (*domain.LeaveRequest, error)
	// ListLeaves 中 userID 为 nil 表示所有用户
	ListLeaves(ctx context.Context, userID *int64, page domain.PageRequest) ([]*domain.LeaveWithUser, int64, error)
	// DecideLeave 只更新仍为 Pending 的请求，否则返回 domain.ErrNotPending
	DecideLeave(ctx context.Context, leave *domain.LeaveRequest) error
	// DeletePendingLeave 只删除仍为 Pending 的请求，否则返回 domain.ErrNotCancellable
	DeletePendingLeave(ctx context.Context, id int64) error
	DeleteAllLeaves(ctx context.Context) (int64, error)
}

type Leaves struct {
	store LeaveStore
	now   func() time.Time
}

func NewLeaves(store LeaveStore) *Leaves {
	return &Leaves{store: store, now: time.Now}
}

// CalendarDate 丢弃时间部分，只保留日期
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (l *Leaves) Submit(ctx context.Context, userID int64, reason string, start, end time.Time) (*domain.LeaveRequest, error) {
	reason = strings.TrimSpace(reason)
	start, end = CalendarDate(start), CalendarDate(end)
	if reason == "" {
		return nil, domain.ErrEmptyReason
	}
	if start.After(end) {
		return nil, domain.ErrInvalidRange
	}

	if err := l.checkOverlap(ctx, userID, start, end); err != nil {
		return nil, err
	}

	leave := &domain.LeaveRequest{
		UserID:    userID,
		Reason:    reason,
		StartDate: start,
		EndDate:   end,
		Status:    domain.LeavePending,
		CreatedAt: l.now(),
	}

	if err := l.store.InsertLeave(ctx, leave); err != nil {
		if errors.Is(err, domain.ErrOverlapConflict) {
			// 并发提交被排他约束拦下，尽量带上冲突记录
			if checkErr := l.checkOverlap(ctx, userID, start, end); checkErr != nil {
				return nil, checkErr
			}
		}
		return nil, err
	}

	return leave, nil
}

func (l *Leaves) checkOverlap(ctx context.Context, userID int64, start, end time.Time) error {
	existing, err := l.store.FindOverlappingLeave(ctx, userID, start, end)
	switch {
	case err == nil:
		return &domain.OverlapError{Existing: existing}
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (l *Leaves) List(ctx context.Context, requester domain.Identity, page domain.PageRequest) (*domain.Page[*domain.LeaveWithUser], error) {
	var userID *int64
	if !requester.IsAdmin() {
		userID = &requester.UserID
	}

	leaves, total, err := l.store.ListLeaves(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(leaves, page, total), nil
}

func (l *Leaves) Get(ctx context.Context, id int64) (*domain.LeaveRequest, error) {
	return l.store.GetLeaveByID(ctx, id)
}

func (l *Leaves) SetStatus(ctx context.Context, id int64, status domain.LeaveStatus, decider domain.Identity) (*domain.LeaveRequest, error) {
	if !decider.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if status != domain.LeaveApproved && status != domain.LeaveRejected {
		return nil, domain.ErrInvalidStatus
	}

	leave, err := l.store.GetLeaveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.Status != domain.LeavePending {
		return nil, domain.ErrNotPending
	}

	now := l.now()
	leave.Status = status
	leave.DecidedBy = &decider.UserID
	leave.DecidedAt = &now

	if err := l.store.DecideLeave(ctx, leave); err != nil {
		return nil, err
	}
	return leave, nil
}

func (l *Leaves) Cancel(ctx context.Context, id int64, requester domain.Identity) error {
	leave, err := l.store.GetLeaveByID(ctx, id)
	if err != nil {
		return err
	}
	if leave.UserID != requester.UserID {
		return domain.ErrForbidden
	}
	if leave.Status != domain.LeavePending {
		return domain.ErrNotCancellable
	}
	return l.store.DeletePendingLeave(ctx, id)
}

func (l *Leaves) DeleteAll(ctx context.Context) (int64, error) {
	return l.store.DeleteAllLeaves(ctx)
}
