// Package users управляет участниками: регистрацией, опытом, золотом и уровнем.
// models.go описывает структуру данных пользователя.
package users

import "time"

// User представляет участника в базе данных.
// Создаётся лениво — при первом обращении к боту.
type User struct {
	ID          int64     `db:"id"`           // Автоинкрементный ID записи в БД
	ExternalID  int64     `db:"external_id"`  // Telegram user ID (уникальный)
	DisplayName string    `db:"display_name"` // Отображаемое имя
	TotalXP     int64     `db:"total_xp"`     // Накопленный опыт (>= 0)
	Gold        int64     `db:"gold"`         // Золото (>= 0)
	Level       int       `db:"level"`        // Уровень, всегда пересчитывается из total_xp
	IsActive    bool      `db:"is_active"`    // Мягкое удаление
	LastActive  time.Time `db:"last_active"`  // Последняя активность
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
