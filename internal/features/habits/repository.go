// Package habits — repository.go выполняет операции с таблицами habits
// и completions.
package habits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/db/postgres"
)

// Repository предоставляет методы для работы с привычками и выполнениями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий привычек.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const habitColumns = `id, name, COALESCE(description, ''), base_reward, COALESCE(category, ''), is_active, created_at`

func scanHabit(row pgx.Row) (*Habit, error) {
	var h Habit
	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.BaseReward, &h.Category, &h.IsActive, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHabit добавляет новую привычку.
// Имя уникально без учёта регистра — на конфликте возвращает ErrHabitExists.
func (r *Repository) CreateHabit(ctx context.Context, name, description string, baseReward int64, category string) (*Habit, error) {
	query := `
		INSERT INTO habits (name, description, base_reward, category)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''))
		RETURNING ` + habitColumns
	h, err := scanHabit(r.db.QueryRow(ctx, query, name, description, baseReward, category))
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, common.ErrHabitExists
		}
		return nil, fmt.Errorf("ошибка создания привычки: %w", err)
	}
	return h, nil
}

// GetActiveByID возвращает активную привычку по ID.
func (r *Repository) GetActiveByID(ctx context.Context, habitID int64) (*Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND is_active`
	h, err := scanHabit(r.db.QueryRow(ctx, query, habitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrHabitNotFound
		}
		return nil, fmt.Errorf("ошибка чтения привычки (id=%d): %w", habitID, err)
	}
	return h, nil
}

// GetActiveByName возвращает активную привычку по имени (без учёта регистра).
func (r *Repository) GetActiveByName(ctx context.Context, name string) (*Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE LOWER(name) = LOWER($1) AND is_active`
	h, err := scanHabit(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrHabitNotFound
		}
		return nil, fmt.Errorf("ошибка чтения привычки (name=%s): %w", name, err)
	}
	return h, nil
}

// ListActive возвращает все активные привычки, отсортированные по имени.
// Если category не пустая — только эту категорию.
func (r *Repository) ListActive(ctx context.Context, category string) ([]*Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits
		WHERE is_active AND ($1 = '' OR LOWER(category) = LOWER($1))
		ORDER BY name`
	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения привычек: %w", err)
	}
	defer rows.Close()

	var out []*Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Suggest возвращает активные привычки, имя которых содержит подстроку.
// Используется для подсказок «может, вы имели в виду».
func (r *Repository) Suggest(ctx context.Context, fragment string, limit int) ([]*Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits
		WHERE is_active AND POSITION(LOWER($1) IN LOWER(name)) > 0
		ORDER BY name LIMIT $2`
	rows, err := r.db.Query(ctx, query, fragment, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска привычек: %w", err)
	}
	defer rows.Close()

	var out []*Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Deactivate отключает привычку (мягкое удаление).
func (r *Repository) Deactivate(ctx context.Context, habitID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE habits SET is_active = FALSE WHERE id = $1`, habitID)
	if err != nil {
		return fmt.Errorf("ошибка отключения привычки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrHabitNotFound
	}
	return nil
}

const completionColumns = `id, user_id, habit_id, completed_at, completion_date,
	       xp_awarded, COALESCE(note, ''), origin`

func scanCompletion(row pgx.Row) (*Completion, error) {
	var c Completion
	err := row.Scan(
		&c.ID, &c.UserID, &c.HabitID, &c.CompletedAt, &c.CompletionDate,
		&c.XPAwarded, &c.Note, &c.Origin,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCompletionForDay возвращает запись о выполнении за конкретный день
// или nil, если её нет.
func (r *Repository) GetCompletionForDay(ctx context.Context, userID, habitID int64, day time.Time) (*Completion, error) {
	query := `SELECT ` + completionColumns + `
		FROM completions
		WHERE user_id = $1 AND habit_id = $2 AND completion_date = $3`
	c, err := scanCompletion(r.db.QueryRow(ctx, query, userID, habitID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения выполнения: %w", err)
	}
	return c, nil
}

// InsertCompletion вставляет новую запись о выполнении.
// При конкурентной вставке той же строки БД вернёт unique_violation —
// вызывающий код обязан распознать его через postgres.IsUniqueViolation
// и перечитать существующую запись, а не отдавать ошибку наружу.
func (r *Repository) InsertCompletion(ctx context.Context, userID, habitID int64, day time.Time, xpAwarded int64, note, origin string) (*Completion, error) {
	query := `
		INSERT INTO completions (user_id, habit_id, completion_date, xp_awarded, note, origin)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING ` + completionColumns
	c, err := scanCompletion(r.db.QueryRow(ctx, query, userID, habitID, day, xpAwarded, note, origin))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// TouchCompletion обновляет заметку, источник и время существующей записи.
// Никаких наградных эффектов на этом пути нет.
func (r *Repository) TouchCompletion(ctx context.Context, completionID int64, note, origin string) (*Completion, error) {
	query := `
		UPDATE completions
		SET note = COALESCE(NULLIF($2, ''), note),
		    origin = $3,
		    completed_at = NOW()
		WHERE id = $1
		RETURNING ` + completionColumns
	c, err := scanCompletion(r.db.QueryRow(ctx, query, completionID, note, origin))
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления выполнения: %w", err)
	}
	return c, nil
}

// DailyProgress возвращает все активные привычки со статусом выполнения
// за указанный день.
func (r *Repository) DailyProgress(ctx context.Context, userID int64, day time.Time) ([]*DailyEntry, error) {
	habits, err := r.ListActive(ctx, "")
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + completionColumns + `
		FROM completions
		WHERE user_id = $1 AND completion_date = $2`
	rows, err := r.db.Query(ctx, query, userID, day)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения дневного прогресса: %w", err)
	}
	defer rows.Close()

	byHabit := make(map[int64]*Completion)
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		byHabit[c.HabitID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]*DailyEntry, 0, len(habits))
	for _, h := range habits {
		entries = append(entries, &DailyEntry{Habit: h, Completion: byHabit[h.ID]})
	}
	return entries, nil
}

// GetStats возвращает статистику привычки.
// Окно «последние 7 дней» считается календарно (AddDate), а не
// вычитанием номера дня месяца.
func (r *Repository) GetStats(ctx context.Context, habitID int64, today time.Time) (*Stats, error) {
	h, err := r.GetActiveByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	weekAgo := today.AddDate(0, 0, -7)
	var st Stats
	st.Habit = h
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT user_id),
		       COUNT(*) FILTER (WHERE completion_date >= $2)
		FROM completions
		WHERE habit_id = $1
	`, habitID, weekAgo).Scan(&st.TotalCompletions, &st.UniqueUsers, &st.RecentCompletions)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта статистики: %w", err)
	}
	return &st, nil
}
