// Package users — repository.go выполняет операции с таблицей users.
// Изменения опыта и золота делаются в транзакции с блокировкой строки,
// чтобы конкурентные начисления не теряли друг друга.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"privychka.ru/habit-bot/internal/common"
)

// Repository предоставляет методы для работы с таблицей users.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий пользователей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, external_id, display_name, total_xp, gold, level,
	       is_active, last_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.ExternalID, &u.DisplayName, &u.TotalXP, &u.Gold, &u.Level,
		&u.IsActive, &u.LastActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreate возвращает пользователя по внешнему ID, создавая запись
// при первом обращении. На конфликте обновляет только имя и активность —
// опыт, золото и флаги не трогаются.
func (r *Repository) GetOrCreate(ctx context.Context, externalID int64, displayName string) (*User, error) {
	query := `
		INSERT INTO users (external_id, display_name, total_xp, gold, level)
		VALUES ($1, $2, 0, 0, 1)
		ON CONFLICT (external_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    last_active = NOW(),
		    updated_at = NOW()
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, externalID, displayName))
	if err != nil {
		return nil, fmt.Errorf("ошибка регистрации пользователя: %w", err)
	}
	return u, nil
}

// GetByID возвращает пользователя по внутреннему ID.
func (r *Repository) GetByID(ctx context.Context, userID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (id=%d): %w", userID, err)
	}
	return u, nil
}

// GetByExternalID возвращает пользователя по Telegram ID.
func (r *Repository) GetByExternalID(ctx context.Context, externalID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (external_id=%d): %w", externalID, err)
	}
	return u, nil
}

// GetByDisplayName возвращает пользователя по отображаемому имени.
// Регистр не учитывается.
func (r *Repository) GetByDisplayName(ctx context.Context, name string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(display_name) = LOWER($1)`
	u, err := scanUser(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка поиска пользователя (%s): %w", name, err)
	}
	return u, nil
}

// ApplyProgress атомарно применяет дельты опыта и золота.
// Строка блокируется FOR UPDATE, уровень пересчитывается из нового опыта.
func (r *Repository) ApplyProgress(ctx context.Context, userID int64, xpDelta, goldDelta int64) (*User, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var totalXP, gold int64
	err = tx.QueryRow(ctx,
		`SELECT total_xp, gold FROM users WHERE id = $1 FOR UPDATE`, userID,
	).Scan(&totalXP, &gold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, common.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}

	res := ApplyDeltas(totalXP, gold, xpDelta, goldDelta)

	u, err := scanUser(tx.QueryRow(ctx, `
		UPDATE users
		SET total_xp = $2, gold = $3, level = $4, last_active = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		userID, res.TotalXP, res.Gold, res.Level,
	))
	if err != nil {
		return nil, false, fmt.Errorf("ошибка обновления пользователя: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return u, res.LeveledUp, nil
}

// Leaderboard возвращает топ активных пользователей.
// sortBy: "xp", "level" или "gold".
func (r *Repository) Leaderboard(ctx context.Context, sortBy string, limit int) ([]*User, error) {
	order := "total_xp DESC"
	switch sortBy {
	case "level":
		order = "level DESC, total_xp DESC"
	case "gold":
		order = "gold DESC"
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active ORDER BY ` + order + ` LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения топа: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
