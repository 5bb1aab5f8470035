// Package prompts — repository.go работает с таблицей prompt_schedules.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с расписанием напоминаний.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий напоминаний.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const scheduleColumns = `id, name, text, habit_name, send_hour, is_active,
	       last_sent_on, last_message_id, created_at`

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(
		&s.ID, &s.Name, &s.Text, &s.HabitName, &s.SendHour, &s.IsActive,
		&s.LastSentOn, &s.LastMessageID, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create добавляет напоминание. Повторное добавление с тем же именем
// ничего не меняет.
func (r *Repository) Create(ctx context.Context, s *Schedule) error {
	query := `
		INSERT INTO prompt_schedules (name, text, habit_name, send_hour, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, s.Name, s.Text, s.HabitName, s.SendHour)
	if err != nil {
		return fmt.Errorf("ошибка создания напоминания: %w", err)
	}
	return nil
}

// ListDue возвращает активные напоминания, чей час наступил
// и которые сегодня ещё не отправлялись.
func (r *Repository) ListDue(ctx context.Context, hour int, today time.Time) ([]*Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM prompt_schedules
		WHERE is_active AND send_hour = $1
		  AND (last_sent_on IS NULL OR last_sent_on < $2)
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, hour, today)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения расписания: %w", err)
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkSent отмечает отправку и запоминает ID сообщения,
// чтобы привязывать к нему ответы-подтверждения.
func (r *Repository) MarkSent(ctx context.Context, scheduleID int64, day time.Time, messageID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE prompt_schedules
		SET last_sent_on = $2, last_message_id = $3
		WHERE id = $1`, scheduleID, day, messageID)
	if err != nil {
		return fmt.Errorf("ошибка отметки отправки: %w", err)
	}
	return nil
}

// GetByMessageID возвращает напоминание по ID отправленного сообщения.
// Возвращает nil без ошибки, если сообщение не было напоминанием.
func (r *Repository) GetByMessageID(ctx context.Context, messageID int64) (*Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM prompt_schedules WHERE last_message_id = $1`
	s, err := scanSchedule(r.db.QueryRow(ctx, query, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска напоминания: %w", err)
	}
	return s, nil
}

// List возвращает все напоминания.
func (r *Repository) List(ctx context.Context) ([]*Schedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+` FROM prompt_schedules ORDER BY send_hour, id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения расписания: %w", err)
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
