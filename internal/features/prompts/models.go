// Package prompts реализует напоминания о привычках: расписание отправки
// в чат и распознавание подтверждений в ответах на напоминание.
// models.go описывает структуры данных напоминаний.
package prompts

import "time"

// Schedule — одно напоминание в расписании.
// Отправляется раз в день в заданный час по времени бота.
type Schedule struct {
	ID            int64      `db:"id"`
	Name          string     `db:"name"`
	Text          string     `db:"text"`
	HabitName     string     `db:"habit_name"`
	SendHour      int        `db:"send_hour"`
	IsActive      bool       `db:"is_active"`
	LastSentOn    *time.Time `db:"last_sent_on"`    // день последней отправки
	LastMessageID int64      `db:"last_message_id"` // для привязки ответов
	CreatedAt     time.Time  `db:"created_at"`
}
