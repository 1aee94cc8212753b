package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

const leaveColumns = `l.id, l.user_id, l.reason, l.start_date, l.end_date, l.status, l.created_at, l.decided_by, l.decided_at`

func scanLeave(row rowScanner, extra ...any) (*domain.LeaveRequest, error) {
	leave := &domain.LeaveRequest{}
	dst := []any{
		&leave.ID,
		&leave.UserID,
		&leave.Reason,
		&leave.StartDate,
		&leave.EndDate,
		&leave.Status,
		&leave.CreatedAt,
		&leave.DecidedBy,
		&leave.DecidedAt,
	}
	if err := row.Scan(append(dst, extra...)...); err != nil {
		return nil, err
	}
	return leave, nil
}

func (r *Repository) FindOverlappingLeave(ctx context.Context, userID int64, start, end time.Time) (*domain.LeaveRequest, error) {
	query := `
		SELECT ` + leaveColumns + `
		FROM leaves l
		WHERE l.user_id = $1
			AND l.status <> 'Rejected'
			AND l.start_date <= $3::date
			AND l.end_date >= $2::date
		ORDER BY l.id
		LIMIT 1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	// 按日历日期传参，避免 timestamptz 到 date 的转换受会话时区影响
	leave, err := scanLeave(r.dbpool.QueryRowContext(ctx, query, userID, start.Format(time.DateOnly), end.Format(time.DateOnly)))
	if err != nil {
		return nil, translateError(err)
	}
	return leave, nil
}

// InsertLeave 的重叠检查由 leaves_no_overlap 排他约束保证
func (r *Repository) InsertLeave(ctx context.Context, leave *domain.LeaveRequest) error {
	query := `
		INSERT INTO leaves (user_id, reason, start_date, end_date, status, created_at)
		VALUES ($1, $2, $3::date, $4::date, $5, $6)
		RETURNING id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{leave.UserID, leave.Reason, leave.StartDate.Format(time.DateOnly), leave.EndDate.Format(time.DateOnly), leave.Status, leave.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&leave.ID); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) GetLeaveByID(ctx context.Context, id int64) (*domain.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves l WHERE l.id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	leave, err := scanLeave(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return leave, nil
}

func (r *Repository) ListLeaves(ctx context.Context, userID *int64, page domain.PageRequest) ([]*domain.LeaveWithUser, int64, error) {
	where := ""
	args := []any{}
	if userID != nil {
		where = "WHERE l.user_id = $1"
		args = append(args, *userID)
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var total int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM leaves l `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s, u.name, u.email, u.role, u.employee_id
		FROM leaves l
		JOIN users u ON u.id = l.user_id
		%s
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $%d OFFSET $%d
	`, leaveColumns, where, len(args)+1, len(args)+2)

	rows, err := r.dbpool.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.LeaveWithUser, 0)
	for rows.Next() {
		item := &domain.LeaveWithUser{}
		leave, err := scanLeave(rows, &item.User.Name, &item.User.Email, &item.User.Role, &item.User.EmployeeID)
		if err != nil {
			return nil, 0, err
		}
		item.LeaveRequest = *leave
		item.User.ID = leave.UserID
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *Repository) DecideLeave(ctx context.Context, leave *domain.LeaveRequest) error {
	query := `
		UPDATE leaves
		SET status = $1, decided_by = $2, decided_at = $3
		WHERE id = $4 AND status = 'Pending'
		RETURNING id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, query, leave.Status, leave.DecidedBy, leave.DecidedAt, leave.ID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotPending
		}
		return translateError(err)
	}

	return nil
}

func (r *Repository) DeletePendingLeave(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM leaves WHERE id = $1 AND status = 'Pending'`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotCancellable
	}

	return nil
}

func (r *Repository) DeleteAllLeaves(ctx context.Context) (int64, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM leaves`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
