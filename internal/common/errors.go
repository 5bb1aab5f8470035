// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки справочника привычек и журнала выполнений
var (
	// ErrHabitNotFound — привычка не найдена или отключена
	ErrHabitNotFound = errors.New("привычка не найдена")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrHabitExists — привычка с таким именем уже существует
	ErrHabitExists = errors.New("привычка с таким именем уже есть")
	// ErrInvalidReward — базовая награда должна быть положительной
	ErrInvalidReward = errors.New("награда должна быть положительной")
	// ErrEmptyHabitName — имя привычки не задано
	ErrEmptyHabitName = errors.New("имя привычки не может быть пустым")
)

// Ошибки стриков
var (
	// ErrStreakCorrupted — в записи стрика рекорд меньше текущей серии.
	// Это повреждение данных: операция прерывается без записи.
	ErrStreakCorrupted = errors.New("запись стрика повреждена: рекорд меньше текущей серии")
)

// Ошибки экономики и наград
var (
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrItemNotFound — предмета нет в инвентаре
	ErrItemNotFound = errors.New("предмета нет в инвентаре")
	// ErrNotConsumable — предмет нельзя использовать
	ErrNotConsumable = errors.New("этот предмет нельзя использовать")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)
