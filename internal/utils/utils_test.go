package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksync-dev/worksync/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2026-03-01T10:30:00+08:00")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	for _, s := range []string{"", "03/01/2026", "2026-13-01", "tomorrow"} {
		_, err := ParseDate(s)
		assert.ErrorIs(t, err, ErrInvalidDate, s)
	}
}

func TestParseEndDate(t *testing.T) {
	d, err := ParseEndDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 23, 59, 59, 999999000, time.UTC), d)

	d, err = ParseEndDate("2026-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), d)

	_, err = ParseEndDate("2026-03-32")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		page, limit string
		want        domain.PageRequest
	}{
		{"", "", domain.PageRequest{Page: 1, Limit: 10}},
		{"3", "25", domain.PageRequest{Page: 3, Limit: 25}},
		{"0", "-5", domain.PageRequest{Page: 1, Limit: 10}},
		{"abc", "1000", domain.PageRequest{Page: 1, Limit: 100}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePageRequest(tt.page, tt.limit, 10, 100))
	}
}

func TestGenerateRandomUser(t *testing.T) {
	u, err := GenerateRandomUser("secret", "worksync.com", 7)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(u.Email, "@worksync.com"))
	assert.Equal(t, domain.RoleEmployee, u.Role)
	assert.Equal(t, "EMP007", *u.EmployeeID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))
}

func TestGenerateRandomPassword(t *testing.T) {
	assert.Len(t, GenerateRandomPassword(12), 12)
	assert.True(t, GenerateRandomAttendanceStatus().Valid())
	assert.Equal(t, "EMP1234", FormatEmployeeID(1234))
}
