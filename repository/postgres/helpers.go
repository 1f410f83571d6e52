package postgres

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/restaurant/domain"
)

const (
	pgUniqueViolation   = "23505"
	pgInvalidTextFormat = "22P02"
)

func marshalAddresses(addresses []domain.Address) []byte {
	if addresses == nil {
		addresses = []domain.Address{}
	}
	b, err := json.Marshal(addresses)
	if err != nil {
		return []byte("[]")
	}
	return b
}

func rolesToText(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func textToRoles(values []string) []domain.Role {
	out := make([]domain.Role, 0, len(values))
	for _, v := range values {
		out = append(out, domain.Role(v))
	}
	return out
}

// translateUserError maps driver errors onto domain errors for the users table.
func translateUserError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.WrapError(domain.ErrCodeConflict, domain.ErrUserExists.Message, err)
		case pgInvalidTextFormat:
			// malformed uuid in the path
			return domain.ErrUserNotFound
		}
	}
	return err
}
