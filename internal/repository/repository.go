package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/worksync-dev/worksync/backend/internal/config"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// 约束名需要与 migrations 中保持一致
const (
	constraintUserEmail        = "users_email_key"
	constraintUserEmployeeID   = "users_employee_id_key"
	constraintAttendanceDay    = "attendance_user_day_key"
	constraintLeaveOverlap     = "leaves_no_overlap"
	constraintLeaveRange       = "leaves_date_range_check"
	constraintResetOnePending  = "password_resets_one_pending"
	constraintAttendanceUserFK = "attendance_user_id_fkey"
	constraintLeaveUserFK      = "leaves_user_id_fkey"
)

// translateError 把驱动层的错误转换成 domain 中定义的错误
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.ConstraintName {
		case constraintUserEmail:
			return domain.ErrEmailExists
		case constraintUserEmployeeID:
			return domain.ErrEmployeeIDExists
		case constraintAttendanceDay:
			return domain.ErrAlreadyMarked
		case constraintLeaveOverlap:
			return domain.ErrOverlapConflict
		case constraintLeaveRange:
			return domain.ErrInvalidRange
		case constraintResetOnePending:
			return domain.ErrResetPending
		case constraintAttendanceUserFK, constraintLeaveUserFK:
			return domain.ErrNotFound
		}
	}
	return err
}

func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.QueryTimeout())
}
