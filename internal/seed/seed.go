// Package seed 负责创建初始管理员以及生成用于演示的随机数据。
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/config"
	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/ledger"
	"github.com/worksync-dev/worksync/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	GetMaxEmployeeNumber(ctx context.Context) (int, error)
}

type Store interface {
	UserStore
	ledger.AttendanceStore
	ledger.LeaveStore
}

// EnsureInitialAdmin 在账户不存在时创建初始管理员，已存在时什么也不做
func EnsureInitialAdmin(ctx context.Context, users UserStore, cfg *config.Config) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash initial admin password: %w", err)
	}

	admin := &domain.User{
		Name:         cfg.InitialAdmin.Name,
		Email:        domain.NormalizeEmail(cfg.InitialAdmin.Email),
		PasswordHash: string(passwordHash),
		Role:         domain.RoleAdmin,
	}
	if err := users.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil
		}
		return err
	}

	slog.Info("已创建初始管理员", "email", admin.Email)
	return nil
}

// Users 插入 n 个随机员工，返回成功插入的数量
func Users(ctx context.Context, store UserStore, n int, password, emailDomain string) int {
	inserted := 0
	for range n {
		max, err := store.GetMaxEmployeeNumber(ctx)
		if err != nil {
			slog.Error("无法获取员工编号", "error", err)
			return inserted
		}

		user, err := utils.GenerateRandomUser(password, emailDomain, max+1)
		if err != nil {
			slog.Error("无法生成随机用户", "error", err)
			continue
		}

		if err := store.CreateUser(ctx, user); err != nil {
			// 随机姓名可能重复
			slog.Warn("无法插入用户", "email", user.Email, "error", err)
			continue
		}
		inserted++
	}
	return inserted
}

// Attendance 为每个员工生成最近 days 天的考勤，已有记录的日期跳过
func Attendance(ctx context.Context, store Store, days int, loc *time.Location) (int, error) {
	users, err := store.GetAllUsers(ctx)
	if err != nil {
		return 0, err
	}

	inserted := 0
	now := time.Now()
	for _, user := range users {
		if user.Role != domain.RoleEmployee {
			continue
		}
		for d := 1; d <= days; d++ {
			start, _ := ledger.DayWindow(now.AddDate(0, 0, -d), loc)
			// 工作日才打卡
			if wd := start.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}

			record := &domain.AttendanceRecord{
				UserID: user.ID,
				Date:   start.Add(time.Duration(8+rand.Intn(3)) * time.Hour),
				Day:    start.Format(ledger.DayLayout),
				Status: utils.GenerateRandomAttendanceStatus(),
			}
			if err := store.InsertAttendance(ctx, record); err != nil {
				if errors.Is(err, domain.ErrAlreadyMarked) {
					continue
				}
				return inserted, err
			}
			inserted++
		}
	}
	return inserted, nil
}

// Leaves 为每个员工在未来 30 天内随机提交一个请假申请，重叠时跳过
func Leaves(ctx context.Context, store Store) (int, error) {
	users, err := store.GetAllUsers(ctx)
	if err != nil {
		return 0, err
	}

	leaves := ledger.NewLeaves(store)
	inserted := 0
	today := ledger.CalendarDate(time.Now())
	for _, user := range users {
		if user.Role != domain.RoleEmployee {
			continue
		}

		start := today.AddDate(0, 0, 1+rand.Intn(30))
		end := start.AddDate(0, 0, rand.Intn(3))
		if _, err := leaves.Submit(ctx, user.ID, utils.GenerateRandomLeaveReason(), start, end); err != nil {
			if errors.Is(err, domain.ErrOverlapConflict) {
				continue
			}
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
