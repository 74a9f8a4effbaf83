package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storerating/auth-service/internal/app/auth/entity"
	"storerating/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	serviceName = "auth-service"
	usersTable  = "users"

	uniqueViolation = "23505"

	userColumns = `id, name, email, address, password_hash, role, created_at, updated_at`
)

type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

// Create создает нового пользователя. Email сохраняется в нижнем регистре.
func (r *userRepository) Create(ctx context.Context, user *entity.User) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, usersTable)
	defer func() { timer.ObserveDuration(err) }()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	user.Email = normalizeEmail(user.Email)
	_, err = r.db.Exec(
		ctx, query,
		user.ID, user.Name, user.Email, user.Address, user.PasswordHash,
		string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail получает пользователя по email без учета регистра
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = $1`
	return r.getOne(ctx, query, normalizeEmail(email))
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (user *entity.User, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, usersTable)
	defer func() {
		if errors.Is(err, ErrNotFound) {
			timer.ObserveDuration(nil)
			return
		}
		timer.ObserveDuration(err)
	}()

	user, err = scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdatePassword заменяет хэш пароля
func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, usersTable)
	defer func() { timer.ObserveDuration(err) }()

	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`

	result, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List ищет пользователей по имени, email и адресу (ILIKE) с фильтром по роли
func (r *userRepository) List(ctx context.Context, filter entity.UserFilter) (users []entity.User, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, usersTable)
	defer func() { timer.ObserveDuration(err) }()

	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users = make([]entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// CountByRole считает пользователей по ролям
func (r *userRepository) CountByRole(ctx context.Context) (counts map[entity.Role]int, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, usersTable)
	defer func() { timer.ObserveDuration(err) }()

	rows, err := r.db.Query(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	defer rows.Close()

	counts = make(map[entity.Role]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		counts[entity.Role(role)] = n
	}

	return counts, rows.Err()
}

// buildListQuery собирает запрос списка пользователей с плейсхолдерами
func buildListQuery(filter entity.UserFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR address ILIKE $%d)", n, n, n))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY name ASC`

	return query, args
}

// escapeLike экранирует спецсимволы шаблона LIKE
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Address,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = entity.Role(role)
	return &user, nil
}
