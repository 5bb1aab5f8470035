// Package streaks управляет сериями ежедневных выполнений привычек.
// models.go описывает структуру данных стрика.
package streaks

import "time"

// Streak представляет серию пользователя по одной привычке.
// Ровно одна строка на (пользователь, привычка); создаётся лениво
// при первом выполнении и никогда не удаляется.
type Streak struct {
	ID                   int64      `db:"id"`
	UserID               int64      `db:"user_id"`
	HabitID              int64      `db:"habit_id"`
	CurrentLength        int        `db:"current_length"`         // Текущая серия (дней подряд)
	BestLength           int        `db:"best_length"`            // Личный рекорд, не убывает
	LastCompletionDay    *time.Time `db:"last_completion_day"`    // Дата последнего выполнения
	LastMilestoneClaimed int        `db:"last_milestone_claimed"` // Высший уже награждённый порог
	UpdatedAt            time.Time  `db:"updated_at"`
}

// Transition — метка перехода состояния стрика.
type Transition string

const (
	// TransitionStarted — первая запись: серия началась с 1.
	TransitionStarted Transition = "started"
	// TransitionUnchanged — повторная отметка в тот же день, ничего не меняется.
	TransitionUnchanged Transition = "unchanged"
	// TransitionContinued — вчера тоже было выполнение, серия растёт.
	TransitionContinued Transition = "continued"
	// TransitionReset — пропуск в 2+ дня, серия начинается заново.
	TransitionReset Transition = "reset"
)

// Result — итог применения выполнения к стрику.
type Result struct {
	CurrentLength        int        // Серия после перехода
	BestLength           int        // Рекорд после перехода
	Transition           Transition // Какой переход случился
	MilestoneReached     int        // Достигнутый порог (0, если нет)
	LostStreak           int        // Потерянная серия (только при reset)
	LastMilestoneClaimed int        // Новое значение счётчика порогов
}

// Overview — строка сводки стриков пользователя для отображения.
type Overview struct {
	HabitID       int64
	HabitName     string
	CurrentLength int
	BestLength    int
	LastDay       *time.Time
	IsActive      bool // Выполнена сегодня или вчера
	NextMilestone int  // Следующий порог (0, если все пройдены)
}
