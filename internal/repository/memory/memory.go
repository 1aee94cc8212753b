// Package memory 提供一个进程内的存储实现，语义与 PostgreSQL 实现保持一致
// （唯一约束、排他约束、级联删除），供测试和 DATABASE_DRIVER=memory 使用。
package memory

import (
	"sync"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

type Store struct {
	mu sync.Mutex

	nextID     int64
	users      map[int64]*domain.User
	attendance map[int64]*domain.AttendanceRecord
	leaves     map[int64]*domain.LeaveRequest
	resets     map[int64]*domain.PasswordResetRequest
}

func New() *Store {
	return &Store{
		users:      make(map[int64]*domain.User),
		attendance: make(map[int64]*domain.AttendanceRecord),
		leaves:     make(map[int64]*domain.LeaveRequest),
		resets:     make(map[int64]*domain.PasswordResetRequest),
	}
}

func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *Store) brief(userID int64) domain.UserBrief {
	if u, ok := s.users[userID]; ok {
		return u.Brief()
	}
	return domain.UserBrief{ID: userID}
}
