package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

const attendanceColumns = `a.id, a.user_id, a.date, to_char(a.day, 'YYYY-MM-DD'), a.status, a.modified_by, a.modified_at`

func scanAttendance(row rowScanner, extra ...any) (*domain.AttendanceRecord, error) {
	record := &domain.AttendanceRecord{}
	dst := []any{
		&record.ID,
		&record.UserID,
		&record.Date,
		&record.Day,
		&record.Status,
		&record.ModifiedBy,
		&record.ModifiedAt,
	}
	if err := row.Scan(append(dst, extra...)...); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository) GetAttendanceByUserAndDay(ctx context.Context, userID int64, day string) (*domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance a WHERE a.user_id = $1 AND a.day = $2::date`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	record, err := scanAttendance(r.dbpool.QueryRowContext(ctx, query, userID, day))
	if err != nil {
		return nil, translateError(err)
	}
	return record, nil
}

// InsertAttendance 依赖 (user_id, day) 唯一约束，冲突时返回 domain.ErrAlreadyMarked
func (r *Repository) InsertAttendance(ctx context.Context, record *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance (user_id, date, day, status)
		VALUES ($1, $2, $3::date, $4)
		ON CONFLICT ON CONSTRAINT attendance_user_day_key DO NOTHING
		RETURNING id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{record.UserID, record.Date, record.Day, record.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&record.ID); err != nil {
		// DO NOTHING 时不会返回任何行
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrAlreadyMarked
		}
		return translateError(err)
	}

	return nil
}

func (r *Repository) GetAttendanceByID(ctx context.Context, id int64) (*domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance a WHERE a.id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	record, err := scanAttendance(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return record, nil
}

func (r *Repository) UpdateAttendanceStatus(ctx context.Context, record *domain.AttendanceRecord) error {
	query := `
		UPDATE attendance
		SET status = $1, modified_by = $2, modified_at = $3
		WHERE id = $4
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, record.Status, record.ModifiedBy, record.ModifiedAt, record.ID)
	if err != nil {
		return translateError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *Repository) ListAttendanceByUser(ctx context.Context, userID int64, page domain.PageRequest) ([]*domain.AttendanceRecord, int64, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var total int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance a
		WHERE a.user_id = $1
		ORDER BY a.date DESC, a.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]*domain.AttendanceRecord, 0)
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func attendanceFilterClause(filter domain.AttendanceFilter) (string, []any) {
	conds := []string{}
	args := []any{}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	switch {
	case filter.From != nil || filter.To != nil:
		if filter.From != nil {
			add("a.date >= $%d", *filter.From)
		}
		if filter.To != nil {
			add("a.date <= $%d", *filter.To)
		}
	case filter.Date != nil:
		d := filter.Date.UTC()
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		add("a.date >= $%d", start)
		add("a.date < $%d", start.AddDate(0, 0, 1))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repository) ListAttendance(ctx context.Context, filter domain.AttendanceFilter, page domain.PageRequest) ([]*domain.AttendanceWithUser, int64, error) {
	where, args := attendanceFilterClause(filter)

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var total int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance a `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s, u.name, u.email, u.role, u.employee_id
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		%s
		ORDER BY a.date DESC, a.id DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, len(args)+1, len(args)+2)

	rows, err := r.dbpool.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.AttendanceWithUser, 0)
	for rows.Next() {
		item := &domain.AttendanceWithUser{}
		record, err := scanAttendance(rows, &item.User.Name, &item.User.Email, &item.User.Role, &item.User.EmployeeID)
		if err != nil {
			return nil, 0, err
		}
		item.AttendanceRecord = *record
		item.User.ID = record.UserID
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *Repository) DeleteAllAttendance(ctx context.Context) (int64, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM attendance`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
