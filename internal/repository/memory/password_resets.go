package memory

import (
	"context"
	"sort"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

func copyReset(p *domain.PasswordResetRequest) *domain.PasswordResetRequest {
	c := *p
	return &c
}

func (s *Store) CreatePasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[req.UserID]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range s.resets {
		if p.UserID == req.UserID && p.Status == domain.PasswordResetPending {
			return domain.ErrResetPending
		}
	}

	req.ID = s.newID()
	req.Status = domain.PasswordResetPending
	req.RequestedAt = time.Now()
	s.resets[req.ID] = copyReset(req)
	return nil
}

func (s *Store) GetPasswordResetByID(ctx context.Context, id int64) (*domain.PasswordResetRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.resets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyReset(p), nil
}

func (s *Store) ListPasswordResets(ctx context.Context, status *domain.PasswordResetStatus, page domain.PageRequest) ([]*domain.PasswordResetWithUser, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resets := make([]*domain.PasswordResetRequest, 0)
	for _, p := range s.resets {
		if status == nil || p.Status == *status {
			resets = append(resets, copyReset(p))
		}
	}
	sort.Slice(resets, func(i, j int) bool {
		if !resets[i].RequestedAt.Equal(resets[j].RequestedAt) {
			return resets[i].RequestedAt.After(resets[j].RequestedAt)
		}
		return resets[i].ID > resets[j].ID
	})

	items := make([]*domain.PasswordResetWithUser, 0)
	for _, p := range paginate(resets, page) {
		items = append(items, &domain.PasswordResetWithUser{PasswordResetRequest: *p, User: s.brief(p.UserID)})
	}
	return items, int64(len(resets)), nil
}

func (s *Store) CompletePasswordReset(ctx context.Context, req *domain.PasswordResetRequest, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.resets[req.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != domain.PasswordResetPending {
		return domain.ErrResetCompleted
	}
	u, ok := s.users[p.UserID]
	if !ok {
		return domain.ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.Version++
	p.Status = domain.PasswordResetCompleted
	p.CompletedBy = req.CompletedBy
	p.CompletedAt = req.CompletedAt
	return nil
}
