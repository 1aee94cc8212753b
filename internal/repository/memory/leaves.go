package memory

import (
	"context"
	"sort"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

func copyLeave(l *domain.LeaveRequest) *domain.LeaveRequest {
	c := *l
	return &c
}

func (s *Store) findOverlappingLocked(userID int64, start, end time.Time) *domain.LeaveRequest {
	var found *domain.LeaveRequest
	for _, l := range s.leaves {
		if l.UserID != userID || !l.BlocksOverlap() || !l.Overlaps(start, end) {
			continue
		}
		if found == nil || l.ID < found.ID {
			found = l
		}
	}
	return found
}

func (s *Store) FindOverlappingLeave(ctx context.Context, userID int64, start, end time.Time) (*domain.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l := s.findOverlappingLocked(userID, start, end); l != nil {
		return copyLeave(l), nil
	}
	return nil, domain.ErrNotFound
}

func (s *Store) InsertLeave(ctx context.Context, leave *domain.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[leave.UserID]; !ok {
		return domain.ErrNotFound
	}
	if leave.StartDate.After(leave.EndDate) {
		return domain.ErrInvalidRange
	}
	if leave.BlocksOverlap() && s.findOverlappingLocked(leave.UserID, leave.StartDate, leave.EndDate) != nil {
		return domain.ErrOverlapConflict
	}

	leave.ID = s.newID()
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = time.Now()
	}
	s.leaves[leave.ID] = copyLeave(leave)
	return nil
}

func (s *Store) GetLeaveByID(ctx context.Context, id int64) (*domain.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leaves[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyLeave(l), nil
}

func (s *Store) ListLeaves(ctx context.Context, userID *int64, page domain.PageRequest) ([]*domain.LeaveWithUser, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leaves := make([]*domain.LeaveRequest, 0)
	for _, l := range s.leaves {
		if userID == nil || l.UserID == *userID {
			leaves = append(leaves, copyLeave(l))
		}
	}
	sort.Slice(leaves, func(i, j int) bool {
		if !leaves[i].CreatedAt.Equal(leaves[j].CreatedAt) {
			return leaves[i].CreatedAt.After(leaves[j].CreatedAt)
		}
		return leaves[i].ID > leaves[j].ID
	})

	items := make([]*domain.LeaveWithUser, 0)
	for _, l := range paginate(leaves, page) {
		items = append(items, &domain.LeaveWithUser{LeaveRequest: *l, User: s.brief(l.UserID)})
	}
	return items, int64(len(leaves)), nil
}

func (s *Store) DecideLeave(ctx context.Context, leave *domain.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leaves[leave.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if l.Status != domain.LeavePending {
		return domain.ErrNotPending
	}
	l.Status = leave.Status
	l.DecidedBy = leave.DecidedBy
	l.DecidedAt = leave.DecidedAt
	return nil
}

func (s *Store) DeletePendingLeave(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leaves[id]
	if !ok {
		return domain.ErrNotFound
	}
	if l.Status != domain.LeavePending {
		return domain.ErrNotCancellable
	}
	delete(s.leaves, id)
	return nil
}

func (s *Store) DeleteAllLeaves(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.leaves))
	s.leaves = make(map[int64]*domain.LeaveRequest)
	return n, nil
}
