package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

const passwordResetColumns = `p.id, p.user_id, p.email, p.status, p.requested_at, p.completed_by, p.completed_at`

func scanPasswordReset(row rowScanner, extra ...any) (*domain.PasswordResetRequest, error) {
	req := &domain.PasswordResetRequest{}
	dst := []any{
		&req.ID,
		&req.UserID,
		&req.Email,
		&req.Status,
		&req.RequestedAt,
		&req.CompletedBy,
		&req.CompletedAt,
	}
	if err := row.Scan(append(dst, extra...)...); err != nil {
		return nil, err
	}
	return req, nil
}

// CreatePasswordReset 依赖部分唯一索引保证每个用户至多一条 Pending 请求
func (r *Repository) CreatePasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error {
	query := `
		INSERT INTO password_resets (user_id, email)
		VALUES ($1, $2)
		RETURNING id, status, requested_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, req.UserID, req.Email).Scan(&req.ID, &req.Status, &req.RequestedAt); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) GetPasswordResetByID(ctx context.Context, id int64) (*domain.PasswordResetRequest, error) {
	query := `SELECT ` + passwordResetColumns + ` FROM password_resets p WHERE p.id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	req, err := scanPasswordReset(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return req, nil
}

func (r *Repository) ListPasswordResets(ctx context.Context, status *domain.PasswordResetStatus, page domain.PageRequest) ([]*domain.PasswordResetWithUser, int64, error) {
	where := ""
	args := []any{}
	if status != nil {
		where = "WHERE p.status = $1"
		args = append(args, *status)
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var total int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM password_resets p `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s, u.name, u.email, u.role, u.employee_id
		FROM password_resets p
		JOIN users u ON u.id = p.user_id
		%s
		ORDER BY p.requested_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d
	`, passwordResetColumns, where, len(args)+1, len(args)+2)

	rows, err := r.dbpool.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.PasswordResetWithUser, 0)
	for rows.Next() {
		item := &domain.PasswordResetWithUser{}
		req, err := scanPasswordReset(rows, &item.User.Name, &item.User.Email, &item.User.Role, &item.User.EmployeeID)
		if err != nil {
			return nil, 0, err
		}
		item.PasswordResetRequest = *req
		item.User.ID = req.UserID
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// CompletePasswordReset 在同一个事务中重置密码并把请求标记为 Completed
func (r *Repository) CompletePasswordReset(ctx context.Context, req *domain.PasswordResetRequest, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.TransactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE password_resets
		SET status = 'Completed', completed_by = $1, completed_at = $2
		WHERE id = $3 AND status = 'Pending'
		RETURNING user_id
	`
	var userID int64
	if err := tx.QueryRowContext(ctx, query, req.CompletedBy, req.CompletedAt, req.ID).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrResetCompleted
		}
		return err
	}

	query = `UPDATE users SET password_hash = $1, version = version + 1 WHERE id = $2`
	result, err := tx.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
