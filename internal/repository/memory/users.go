package memory

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (s *Store) checkUnique(user *domain.User) error {
	for _, u := range s.users {
		if u.ID == user.ID {
			continue
		}
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
		if user.EmployeeID != nil && u.EmployeeID != nil && *u.EmployeeID == *user.EmployeeID {
			return domain.ErrEmployeeIDExists
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(user); err != nil {
		return err
	}

	user.ID = s.newID()
	user.CreatedAt = time.Now()
	user.Version = 1
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != user.Version {
		return domain.ErrEditConflict
	}
	if err := s.checkUnique(user); err != nil {
		return err
	}

	user.Version++
	user.CreatedAt = current.CreatedAt
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	s.deleteUserLocked(id)
	return nil
}

func (s *Store) DeleteUsersExcept(ctx context.Context, email string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0)
	for id, u := range s.users {
		if u.Email != email {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s.deleteUserLocked(id)
	}
	return ids, nil
}

// 与外键的 ON DELETE CASCADE 保持一致
func (s *Store) deleteUserLocked(id int64) {
	delete(s.users, id)
	for rid, r := range s.attendance {
		if r.UserID == id {
			delete(s.attendance, rid)
		}
	}
	for lid, l := range s.leaves {
		if l.UserID == id {
			delete(s.leaves, lid)
		}
	}
	for pid, p := range s.resets {
		if p.UserID == id {
			delete(s.resets, pid)
		}
	}
}

var employeeIDPattern = regexp.MustCompile(`^EMP(\d+)$`)

func (s *Store) GetMaxEmployeeNumber(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	max := 0
	for _, u := range s.users {
		if u.EmployeeID == nil {
			continue
		}
		m := employeeIDPattern.FindStringSubmatch(*u.EmployeeID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n > max {
			max = n
		}
	}
	return max, nil
}
