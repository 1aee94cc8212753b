package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksync-dev/worksync/backend/internal/config"
	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/repository/memory"
)

func TestEnsureInitialAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	cfg := &config.Config{}
	cfg.InitialAdmin.Name = "Root"
	cfg.InitialAdmin.Email = "Root@WorkSync.com"
	cfg.InitialAdmin.Password = "secret"

	require.NoError(t, EnsureInitialAdmin(ctx, store, cfg))
	require.NoError(t, EnsureInitialAdmin(ctx, store, cfg))

	users, err := store.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "root@worksync.com", users[0].Email)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
}

func TestSeedData(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	inserted := Users(ctx, store, 5, "secret", "worksync.com")
	assert.Positive(t, inserted)

	n, err := store.GetMaxEmployeeNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, inserted, n)

	marked, err := Attendance(ctx, store, 7, time.UTC)
	require.NoError(t, err)
	assert.Positive(t, marked)

	// 再次运行不会产生重复的考勤
	again, err := Attendance(ctx, store, 7, time.UTC)
	require.NoError(t, err)
	assert.Zero(t, again)

	leaves, err := Leaves(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, inserted, leaves)
}
