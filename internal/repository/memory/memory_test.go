package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, &domain.User{Name: "A", Email: "a@worksync.com", EmployeeID: ptr("EMP001")}))

	err := s.CreateUser(ctx, &domain.User{Name: "B", Email: "a@worksync.com"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	err = s.CreateUser(ctx, &domain.User{Name: "C", Email: "c@worksync.com", EmployeeID: ptr("EMP001")})
	assert.ErrorIs(t, err, domain.ErrEmployeeIDExists)
}

func TestUpdateUserVersion(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &domain.User{Name: "A", Email: "a@worksync.com"}
	require.NoError(t, s.CreateUser(ctx, u))

	stale, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)

	u.Name = "A2"
	require.NoError(t, s.UpdateUser(ctx, u))

	stale.Name = "A3"
	assert.ErrorIs(t, s.UpdateUser(ctx, stale), domain.ErrEditConflict)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Name)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &domain.User{Name: "A", Email: "a@worksync.com"}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NoError(t, s.InsertAttendance(ctx, &domain.AttendanceRecord{UserID: u.ID, Date: time.Now(), Day: "2026-03-01", Status: domain.AttendancePresent}))
	require.NoError(t, s.InsertLeave(ctx, &domain.LeaveRequest{UserID: u.ID, Reason: "Sick", StartDate: time.Now(), EndDate: time.Now(), Status: domain.LeavePending}))

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	records, total, err := s.ListAttendanceByUser(ctx, u.ID, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, total)

	_, total, err = s.ListLeaves(ctx, nil, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), domain.ErrNotFound)
}

func TestDeleteUsersExcept(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, email := range []string{"admin@worksync.com", "a@worksync.com", "b@worksync.com"} {
		require.NoError(t, s.CreateUser(ctx, &domain.User{Name: email, Email: email}))
	}

	ids, err := s.DeleteUsersExcept(ctx, "admin@worksync.com")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	users, err := s.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@worksync.com", users[0].Email)
}

func TestGetMaxEmployeeNumber(t *testing.T) {
	ctx := context.Background()
	s := New()

	n, err := s.GetMaxEmployeeNumber(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.CreateUser(ctx, &domain.User{Email: "a@worksync.com", EmployeeID: ptr("EMP007")}))
	require.NoError(t, s.CreateUser(ctx, &domain.User{Email: "b@worksync.com", EmployeeID: ptr("EMP012")}))
	require.NoError(t, s.CreateUser(ctx, &domain.User{Email: "c@worksync.com", EmployeeID: ptr("CONTRACTOR-99")}))

	n, err = s.GetMaxEmployeeNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestListAttendanceFilters(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &domain.User{Name: "A", Email: "a@worksync.com"}
	require.NoError(t, s.CreateUser(ctx, u))

	for _, ts := range []time.Time{
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, s.InsertAttendance(ctx, &domain.AttendanceRecord{
			UserID: u.ID,
			Date:   ts,
			Day:    ts.Format(time.RFC3339), // 每条记录使用不同的 day，避开唯一约束
			Status: domain.AttendancePresent,
		}))
	}

	page := domain.PageRequest{Page: 1, Limit: 10}

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items, total, err := s.ListAttendance(ctx, domain.AttendanceFilter{Date: &day}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "a@worksync.com", items[0].User.Email)

	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, total, err = s.ListAttendance(ctx, domain.AttendanceFilter{From: &from, To: &to}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = s.ListAttendance(ctx, domain.AttendanceFilter{}, domain.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestPasswordResets(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &domain.User{Name: "A", Email: "a@worksync.com", PasswordHash: "old"}
	require.NoError(t, s.CreateUser(ctx, u))

	req := &domain.PasswordResetRequest{UserID: u.ID, Email: u.Email}
	require.NoError(t, s.CreatePasswordReset(ctx, req))
	assert.ErrorIs(t, s.CreatePasswordReset(ctx, &domain.PasswordResetRequest{UserID: u.ID, Email: u.Email}), domain.ErrResetPending)

	pending := domain.PasswordResetPending
	items, total, err := s.ListPasswordResets(ctx, &pending, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, u.Email, items[0].User.Email)

	require.NoError(t, s.CompletePasswordReset(ctx, req, "new"))
	assert.ErrorIs(t, s.CompletePasswordReset(ctx, req, "newer"), domain.ErrResetCompleted)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	// 完成后可以再次申请
	assert.NoError(t, s.CreatePasswordReset(ctx, &domain.PasswordResetRequest{UserID: u.ID, Email: u.Email}))
}
