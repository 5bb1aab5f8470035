// Package streaks — repository.go выполняет операции с таблицей streaks.
// Чтение-изменение-запись одной серии идёт в транзакции с блокировкой
// строки: внутри одного ключа (пользователь, привычка) операции
// сериализуются, разные ключи не мешают друг другу.
package streaks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с таблицей streaks.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий стриков.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Begin открывает транзакцию для чтения-изменения-записи серии.
func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	return tx, nil
}

const streakColumns = `id, user_id, habit_id, current_length, best_length,
	       last_completion_day, last_milestone_claimed, updated_at`

func scanStreak(row pgx.Row) (*Streak, error) {
	var s Streak
	err := row.Scan(
		&s.ID, &s.UserID, &s.HabitID, &s.CurrentLength, &s.BestLength,
		&s.LastCompletionDay, &s.LastMilestoneClaimed, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetForUpdate читает серию с блокировкой строки.
// Возвращает nil, если записи ещё нет.
func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID, habitID int64) (*Streak, error) {
	query := `SELECT ` + streakColumns + `
		FROM streaks
		WHERE user_id = $1 AND habit_id = $2
		FOR UPDATE`
	s, err := scanStreak(tx.QueryRow(ctx, query, userID, habitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения стрика: %w", err)
	}
	return s, nil
}

// InsertStarted создаёт новую серию длиной 1.
// ON CONFLICT DO NOTHING: при конкурентной вставке запрос дожидается
// коммита конкурента и возвращает nil вместо ошибки — вызывающий код
// перечитывает строку через GetForUpdate. Ошибка гонки не поднимается,
// и транзакция не попадает в aborted-состояние.
func (r *Repository) InsertStarted(ctx context.Context, tx pgx.Tx, userID, habitID int64, today time.Time) (*Streak, error) {
	query := `
		INSERT INTO streaks (user_id, habit_id, current_length, best_length,
		                     last_completion_day, last_milestone_claimed)
		VALUES ($1, $2, 1, 1, $3, 0)
		ON CONFLICT (user_id, habit_id) DO NOTHING
		RETURNING ` + streakColumns
	s, err := scanStreak(tx.QueryRow(ctx, query, userID, habitID, today))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка создания стрика: %w", err)
	}
	return s, nil
}

// Update записывает новое состояние серии.
func (r *Repository) Update(ctx context.Context, tx pgx.Tx, streakID int64, current, best int, lastDay time.Time, lastClaimed int) error {
	_, err := tx.Exec(ctx, `
		UPDATE streaks
		SET current_length = $2, best_length = $3,
		    last_completion_day = $4, last_milestone_claimed = $5,
		    updated_at = NOW()
		WHERE id = $1
	`, streakID, current, best, lastDay, lastClaimed)
	if err != nil {
		return fmt.Errorf("ошибка обновления стрика: %w", err)
	}
	return nil
}

// Get возвращает серию без блокировки (для чтения из обработчиков).
func (r *Repository) Get(ctx context.Context, userID, habitID int64) (*Streak, error) {
	query := `SELECT ` + streakColumns + ` FROM streaks WHERE user_id = $1 AND habit_id = $2`
	s, err := scanStreak(r.db.QueryRow(ctx, query, userID, habitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения стрика: %w", err)
	}
	return s, nil
}

// SweepBroken обнуляет серии, у которых последнее выполнение старше
// cutoff и серия всё ещё положительная. Это ночная уборка для тех,
// кто просто перестал отмечаться: их строки никто не «трогает»
// неудачным продолжением. Возвращает число обнулённых серий.
func (r *Repository) SweepBroken(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE streaks
		SET current_length = 0, last_milestone_claimed = 0, updated_at = NOW()
		WHERE current_length > 0
		  AND (last_completion_day IS NULL OR last_completion_day < $1)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("ошибка уборки стриков: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListForUser возвращает серии пользователя по активным привычкам,
// отсортированные по убыванию длины.
func (r *Repository) ListForUser(ctx context.Context, userID int64, today time.Time, milestones []int) ([]*Overview, error) {
	query := `
		SELECT s.habit_id, h.name, s.current_length, s.best_length, s.last_completion_day
		FROM streaks s
		JOIN habits h ON h.id = s.habit_id
		WHERE s.user_id = $1 AND h.is_active
		ORDER BY s.current_length DESC, h.name
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения стриков: %w", err)
	}
	defer rows.Close()

	yesterday := today.AddDate(0, 0, -1)
	var out []*Overview
	for rows.Next() {
		var o Overview
		if err := rows.Scan(&o.HabitID, &o.HabitName, &o.CurrentLength, &o.BestLength, &o.LastDay); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		if o.LastDay != nil {
			o.IsActive = o.LastDay.Equal(today) || o.LastDay.Equal(yesterday)
		}
		o.NextMilestone = NextMilestone(o.CurrentLength, milestones)
		out = append(out, &o)
	}
	return out, rows.Err()
}

// Leaderboard возвращает самые длинные живые серии (выполнены сегодня
// или вчера) по всем пользователям.
func (r *Repository) Leaderboard(ctx context.Context, today time.Time, limit int) ([]*LeaderboardRow, error) {
	yesterday := today.AddDate(0, 0, -1)
	query := `
		SELECT u.display_name, h.name, s.current_length, s.best_length
		FROM streaks s
		JOIN users u ON u.id = s.user_id
		JOIN habits h ON h.id = s.habit_id
		WHERE u.is_active AND h.is_active
		  AND s.current_length > 0
		  AND s.last_completion_day IN ($1, $2)
		ORDER BY s.current_length DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, today, yesterday, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения топа стриков: %w", err)
	}
	defer rows.Close()

	var out []*LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.DisplayName, &row.HabitName, &row.CurrentLength, &row.BestLength); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}

// LeaderboardRow — строка топа стриков.
type LeaderboardRow struct {
	DisplayName   string
	HabitName     string
	CurrentLength int
	BestLength    int
}
