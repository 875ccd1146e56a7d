package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/yuhuhero-service/internal/domain"
)

// ErrPhoneTaken is returned when a phone number is already registered.
var ErrPhoneTaken = errors.New("phone already registered")

// ErrUnknownRole is returned when a user is saved with a role outside domain.Role.
var ErrUnknownRole = errors.New("unknown role")

const uniqueViolation = "23505"

// UserRepository defines persistence access for players.
// Lookups of missing users return pgx.ErrNoRows.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	UpdateQuizStatus(ctx context.Context, id string, completed bool) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, phone, password_hash, role, quiz_completed, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, phone, password_hash, role, quiz_completed)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if !user.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
	}

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.QuizCompleted,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrPhoneTaken
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone=$1`
	return scanUser(r.pool.QueryRow(ctx, query, phone))
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdateQuizStatus(ctx context.Context, id string, completed bool) error {
	const query = `
        UPDATE users SET quiz_completed=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, completed, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.QuizCompleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
