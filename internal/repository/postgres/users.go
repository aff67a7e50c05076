package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	uuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/user-auth-service/internal/core/domain"
	"github.com/arklim/user-auth-service/internal/core/port"
	"github.com/arklim/user-auth-service/internal/repository"
)

const uniqueViolationCode = "23505"

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var userColumns = []string{
	"id",
	"email",
	"hashed_password",
	"session_id",
	"session_created_at",
	"reset_token",
	"registered_at",
}

var queryColumns = map[string]struct{}{
	"id":                 {},
	"email":              {},
	"hashed_password":    {},
	"session_id":         {},
	"session_created_at": {},
	"reset_token":        {},
	"registered_at":      {},
}

var writableColumns = map[string]struct{}{
	"email":              {},
	"hashed_password":    {},
	"session_id":         {},
	"session_created_at": {},
	"reset_token":        {},
}

// UserStore implements port.UserStore using PostgreSQL.
type UserStore struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserStore constructs a store backed by any executor that satisfies pgExecutor.
func NewUserStore(exec pgExecutor) *UserStore {
	store := &UserStore{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		store.pool = pool
	}
	return store
}

// WithTx returns a store instance that executes statements within the supplied transaction.
func (s *UserStore) WithTx(tx pgx.Tx) *UserStore {
	if tx == nil {
		return s
	}
	return &UserStore{
		pool:    s.pool,
		exec:    tx,
		builder: s.builder,
	}
}

// FindUserBy returns the first user matching every filter entry.
func (s *UserStore) FindUserBy(ctx context.Context, filter map[string]any) (*domain.User, error) {
	if err := validateFilter(filter, queryColumns, repository.ErrInvalidQuery); err != nil {
		return nil, err
	}

	stmt, args, err := s.builder.
		Select(userColumns...).
		From("auth.users").
		Where(squirrel.Eq(filter)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := s.exec.QueryRow(ctx, stmt, args...)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return user, nil
}

// FindUsersBy returns every user matching the filter.
func (s *UserStore) FindUsersBy(ctx context.Context, filter map[string]any) ([]domain.User, error) {
	if err := validateFilter(filter, queryColumns, repository.ErrInvalidQuery); err != nil {
		return nil, err
	}

	stmt, args, err := s.builder.
		Select(userColumns...).
		From("auth.users").
		Where(squirrel.Eq(filter)).
		OrderBy("registered_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select users sql: %w", err)
	}

	rows, err := s.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// AddUser inserts a new user row and returns it with its assigned id.
func (s *UserStore) AddUser(ctx context.Context, email, hashedPassword string) (*domain.User, error) {
	user := domain.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashedPassword,
		RegisteredAt:   time.Now().UTC(),
	}

	stmt, args, err := s.builder.Insert("auth.users").
		Columns("id", "email", "hashed_password", "registered_at").
		Values(user.ID, user.Email, user.HashedPassword, user.RegisteredAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := s.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, repository.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}

// UpdateUser applies the field map to the identified row. A nil value
// clears the column.
func (s *UserStore) UpdateUser(ctx context.Context, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := validateFilter(fields, writableColumns, repository.ErrUnknownField); err != nil {
		return err
	}

	query := s.builder.Update("auth.users")
	for column, value := range fields {
		query = query.Set(column, value)
	}

	stmt, args, err := query.Where(squirrel.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := s.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func validateFilter(filter map[string]any, allowed map[string]struct{}, sentinel error) error {
	if len(filter) == 0 {
		return sentinel
	}
	for column := range filter {
		if _, ok := allowed[column]; !ok {
			return sentinel
		}
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user             domain.User
		sessionID        sql.NullString
		sessionCreatedAt *time.Time
		resetToken       sql.NullString
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&sessionID,
		&sessionCreatedAt,
		&resetToken,
		&user.RegisteredAt,
	); err != nil {
		return nil, err
	}

	if sessionID.Valid {
		val := sessionID.String
		user.SessionID = &val
	}
	user.SessionCreatedAt = sessionCreatedAt
	if resetToken.Valid {
		val := resetToken.String
		user.ResetToken = &val
	}

	return &user, nil
}

var _ port.UserStore = (*UserStore)(nil)
