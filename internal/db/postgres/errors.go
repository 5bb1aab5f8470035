// Package postgres — errors.go распознаёт коды ошибок PostgreSQL.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Код unique_violation из документации PostgreSQL.
const uniqueViolationCode = "23505"

// IsUniqueViolation проверяет, что ошибка — нарушение уникального
// ограничения (конкурентная вставка той же строки). Вызывающий код
// в этом случае перечитывает уже существующую строку вместо того,
// чтобы отдавать ошибку наружу.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
