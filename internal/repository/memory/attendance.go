package memory

import (
	"context"
	"sort"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

func copyAttendance(r *domain.AttendanceRecord) *domain.AttendanceRecord {
	c := *r
	return &c
}

func newestAttendanceFirst(records []*domain.AttendanceRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID > records[j].ID
	})
}

func (s *Store) GetAttendanceByUserAndDay(ctx context.Context, userID int64, day string) (*domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.attendance {
		if r.UserID == userID && r.Day == day {
			return copyAttendance(r), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) InsertAttendance(ctx context.Context, record *domain.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[record.UserID]; !ok {
		return domain.ErrNotFound
	}
	for _, r := range s.attendance {
		if r.UserID == record.UserID && r.Day == record.Day {
			return domain.ErrAlreadyMarked
		}
	}

	record.ID = s.newID()
	s.attendance[record.ID] = copyAttendance(record)
	return nil
}

func (s *Store) GetAttendanceByID(ctx context.Context, id int64) (*domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.attendance[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyAttendance(r), nil
}

func (s *Store) UpdateAttendanceStatus(ctx context.Context, record *domain.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.attendance[record.ID]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = record.Status
	r.ModifiedBy = record.ModifiedBy
	r.ModifiedAt = record.ModifiedAt
	return nil
}

func (s *Store) ListAttendanceByUser(ctx context.Context, userID int64, page domain.PageRequest) ([]*domain.AttendanceRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*domain.AttendanceRecord, 0)
	for _, r := range s.attendance {
		if r.UserID == userID {
			records = append(records, copyAttendance(r))
		}
	}
	newestAttendanceFirst(records)
	return paginate(records, page), int64(len(records)), nil
}

func (s *Store) ListAttendance(ctx context.Context, filter domain.AttendanceFilter, page domain.PageRequest) ([]*domain.AttendanceWithUser, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := filter.From, filter.To
	if from == nil && to == nil && filter.Date != nil {
		d := filter.Date.UTC()
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		// 单日过滤是左闭右开区间 [start, start+24h)
		last := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
		from, to = &start, &last
	}

	records := make([]*domain.AttendanceRecord, 0)
	for _, r := range s.attendance {
		if from != nil && r.Date.Before(*from) {
			continue
		}
		if to != nil && r.Date.After(*to) {
			continue
		}
		records = append(records, copyAttendance(r))
	}
	newestAttendanceFirst(records)

	items := make([]*domain.AttendanceWithUser, 0)
	for _, r := range paginate(records, page) {
		items = append(items, &domain.AttendanceWithUser{AttendanceRecord: *r, User: s.brief(r.UserID)})
	}
	return items, int64(len(records)), nil
}

func (s *Store) DeleteAllAttendance(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.attendance))
	s.attendance = make(map[int64]*domain.AttendanceRecord)
	return n, nil
}
