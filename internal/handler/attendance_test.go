package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

type todayData struct {
	HasAttendance bool                     `json:"hasAttendance"`
	Record        *domain.AttendanceRecord `json:"record"`
}

func TestMarkAttendance(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.register(t, "sam", domain.RoleEmployee, "")
	otherID, otherToken := env.register(t, "tina", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/attendance/today/%d", id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[todayData](t, rec).Data.HasAttendance)

	rec = env.request(t, http.MethodPost, "/api/attendance/mark", token, map[string]string{"status": "Present"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[domain.AttendanceRecord](t, rec).Data
	assert.Equal(t, id, first.UserID)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), first.Day)

	rec = env.request(t, http.MethodPost, "/api/attendance/mark", token, map[string]string{"status": "Absent"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	conflict := decode[domain.AttendanceRecord](t, rec)
	assert.False(t, conflict.Success)
	assert.Equal(t, first.ID, conflict.Data.ID)
	assert.Equal(t, domain.AttendancePresent, conflict.Data.Status)

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/attendance/today/%d", id), token, nil)
	today := decode[todayData](t, rec).Data
	assert.True(t, today.HasAttendance)
	assert.Equal(t, first.ID, today.Record.ID)

	// 员工不能查看或代替他人打卡
	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/attendance/today/%d", id), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/attendance/user/%d", id), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.request(t, http.MethodPost, "/api/attendance/mark", token, map[string]any{"status": "Present", "userId": otherID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/attendance/today/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.request(t, http.MethodGet, "/api/attendance/user/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/attendance/mark", token, map[string]string{"status": "Late"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceAdminViews(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)
	id, token := env.register(t, "uma", domain.RoleEmployee, "")
	otherID, _ := env.register(t, "vic", domain.RoleEmployee, "")

	rec := env.request(t, http.MethodPost, "/api/attendance/mark", token, map[string]string{"status": "Absent"})
	require.Equal(t, http.StatusCreated, rec.Code)
	record := decode[domain.AttendanceRecord](t, rec).Data

	// 管理员代为打卡
	rec = env.request(t, http.MethodPost, "/api/attendance/mark", super, map[string]any{"status": "Half-day", "userId": otherID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/attendance/%d", record.ID), super, map[string]string{"status": "Present"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	corrected := decode[domain.AttendanceRecord](t, rec).Data
	assert.Equal(t, domain.AttendancePresent, corrected.Status)
	require.NotNil(t, corrected.ModifiedBy)

	rec = env.request(t, http.MethodPut, "/api/attendance/999", super, map[string]string{"status": "Present"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/attendance/%d", record.ID), token, map[string]string{"status": "Present"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/attendance?limit=1", super, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.Page[domain.AttendanceWithUser]](t, rec).Data
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	today := time.Now().UTC().Format("2006-01-02")
	rec = env.request(t, http.MethodGet, "/api/attendance?date="+today, super, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[domain.Page[domain.AttendanceWithUser]](t, rec).Data.Total)

	// 只有日期的 to 包含当天
	rec = env.request(t, http.MethodGet, "/api/attendance?from="+today+"&to="+today, super, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[domain.Page[domain.AttendanceWithUser]](t, rec).Data.Total)

	rec = env.request(t, http.MethodGet, "/api/attendance?from=2026-03-05&to=2026-03-01", super, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.request(t, http.MethodGet, "/api/attendance?date=yesterday", super, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/attendance/user/%d", id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[domain.Page[domain.AttendanceRecord]](t, rec).Data.Total)

	rec = env.request(t, http.MethodDelete, "/api/admin/attendance", super, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted 2 attendance records.", decode[any](t, rec).Message)
}
