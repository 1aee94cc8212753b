package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

const userColumns = `id, name, email, password_hash, role, position, salary, employee_id, profile_image, created_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	dst := []any{
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Position,
		&user.Salary,
		&user.EmployeeID,
		&user.ProfileImage,
		&user.CreatedAt,
		&user.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user, err := scanUser(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user, err := scanUser(r.dbpool.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, position, salary, employee_id, profile_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{user.Name, user.Email, user.PasswordHash, user.Role, user.Position, user.Salary, user.EmployeeID, user.ProfileImage}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.Version); err != nil {
		return translateError(err)
	}

	return nil
}

// UpdateUser 使用 version 做乐观锁，版本不匹配时返回 domain.ErrEditConflict
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET
			name = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			position = $5,
			salary = $6,
			employee_id = $7,
			profile_image = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{user.Name, user.Email, user.PasswordHash, user.Role, user.Position, user.Salary, user.EmployeeID, user.ProfileImage, user.ID, user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt, &user.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEditConflict
		}
		return translateError(err)
	}

	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
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

	return nil
}

// DeleteUsersExcept 删除除指定邮箱之外的所有用户，返回被删除的用户 ID
func (r *Repository) DeleteUsersExcept(ctx context.Context, email string) ([]int64, error) {
	query := `DELETE FROM users WHERE email <> $1 RETURNING id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// GetMaxEmployeeNumber 返回形如 EMP001 的员工编号中最大的数字部分，没有时返回 0
func (r *Repository) GetMaxEmployeeNumber(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(MAX(CAST(substring(employee_id FROM 4) AS INTEGER)), 0)
		FROM users
		WHERE employee_id ~ '^EMP[0-9]+$'
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var max int
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return 0, err
	}

	return max, nil
}
