// Package habits управляет справочником привычек и журналом выполнений.
// models.go описывает структуры данных привычки и записи о выполнении.
package habits

import "time"

// Habit представляет определение привычки.
// После первого выполнения привычка не редактируется — только отключается.
type Habit struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`        // Уникальное имя (без учёта регистра)
	Description string    `db:"description"` // Описание (может быть пустым)
	BaseReward  int64     `db:"base_reward"` // Базовый опыт за выполнение (> 0)
	Category    string    `db:"category"`    // Категория для группировки (может быть пустой)
	IsActive    bool      `db:"is_active"`   // Мягкое удаление
	CreatedAt   time.Time `db:"created_at"`
}

// Допустимые источники записи о выполнении.
const (
	OriginCommand  = "command"  // Явная команда !лог
	OriginReaction = "reaction" // Ответ на напоминание
)

// Completion — запись о выполнении привычки.
// Ровно одна строка на (пользователь, привычка, календарный день):
// уникальное ограничение в БД — механизм защиты, а не просто индекс.
type Completion struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	HabitID        int64     `db:"habit_id"`
	CompletedAt    time.Time `db:"completed_at"`    // Момент последней отметки
	CompletionDate time.Time `db:"completion_date"` // Календарный день (для стриков)
	XPAwarded      int64     `db:"xp_awarded"`      // Сколько опыта начислено
	Note           string    `db:"note"`            // Свободная заметка
	Origin         string    `db:"origin"`          // command или reaction
}

// DailyEntry — строка дневного прогресса: привычка и её статус на день.
type DailyEntry struct {
	Habit      *Habit
	Completion *Completion // nil, если сегодня не выполнена
}

// Stats — статистика одной привычки.
type Stats struct {
	Habit             *Habit
	TotalCompletions  int // Всего выполнений
	UniqueUsers       int // Сколько разных пользователей
	RecentCompletions int // Выполнений за последние 7 дней
}
