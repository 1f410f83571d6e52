package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/repository"
)

const userColumns = `id::text, first_name, last_name, login, email, password_hash, roles, addresses,
	default_currency, active, password_changed_at, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND active`
	return scanUser(r.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO users (id, first_name, last_name, login, email, password_hash, roles, addresses, default_currency, active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, TRUE)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Login,
		user.Email,
		user.PasswordHash,
		rolesToText(user.Roles),
		marshalAddresses(user.Addresses),
		string(user.DefaultCurrency),
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return translateUserError(err)
	}

	user.Active = true
	return nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	query := `
	UPDATE users
	SET first_name = COALESCE($2, first_name),
		last_name = COALESCE($3, last_name),
		login = COALESCE($4, login),
		email = COALESCE($5, email),
		addresses = COALESCE($6::jsonb, addresses),
		default_currency = COALESCE($7, default_currency),
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + userColumns

	var addresses []byte
	if patch.Addresses != nil {
		addresses = marshalAddresses(*patch.Addresses)
	}
	var currency *string
	if patch.DefaultCurrency != nil {
		c := string(*patch.DefaultCurrency)
		currency = &c
	}

	return scanUser(r.pool.QueryRow(ctx, query,
		id,
		patch.FirstName,
		patch.LastName,
		patch.Login,
		patch.Email,
		addresses,
		currency,
	))
}

func (r *userRepository) SetPassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	const query = `
	UPDATE users
	SET password_hash = $2, password_changed_at = $3, updated_at = NOW()
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash, changedAt)
	if err != nil {
		return translateUserError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return translateUserError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var (
		user      domain.User
		roles     []string
		addresses []byte
		currency  string
	)

	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Login,
		&user.Email,
		&user.PasswordHash,
		&roles,
		&addresses,
		&currency,
		&user.Active,
		&user.PasswordChangedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, translateUserError(err)
	}

	user.Roles = textToRoles(roles)
	user.DefaultCurrency = domain.Currency(currency)
	if len(addresses) > 0 {
		_ = json.Unmarshal(addresses, &user.Addresses)
	}
	if user.Addresses == nil {
		user.Addresses = []domain.Address{}
	}
	return &user, nil
}
