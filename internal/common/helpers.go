// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с датами.
package common

import (
	"fmt"
	"time"
)

// BotLocation возвращает часовой пояс бота (Europe/Moscow).
// Все «календарные дни» считаются в этом поясе: день выполнения
// привычки — это дата в Москве, а не в UTC.
func BotLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		// Если не удалось загрузить — используем UTC+3 вручную
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// Now возвращает текущее время в часовом поясе бота.
func Now() time.Time {
	return time.Now().In(BotLocation())
}

// Today возвращает сегодняшнюю дату (полночь) в часовом поясе бота.
func Today() time.Time {
	return DayOf(Now())
}

// DayOf обрезает время до календарной даты в часовом поясе бота.
func DayOf(t time.Time) time.Time {
	t = t.In(BotLocation())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween возвращает количество календарных дней между двумя датами.
// Считает через AddDate, а не вычитанием номеров дней месяца —
// арифметика «день минус 7» ломается на границе месяца.
func DaysBetween(from, to time.Time) int {
	from = DayOf(from)
	to = DayOf(to)
	days := 0
	for from.Before(to) {
		from = from.AddDate(0, 0, 1)
		days++
	}
	return days
}

// SameDay проверяет, что две отметки времени попадают на один календарный день.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется для отображения дат наград и выполнений.
func FormatDateTime(t time.Time) string {
	return t.In(BotLocation()).Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату: "02.01.2006".
func FormatDate(t time.Time) string {
	return t.In(BotLocation()).Format("02.01.2006")
}

// FormatXP создаёт строку вида "+15 XP" или "-10 XP".
func FormatXP(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d XP", amount)
	}
	return fmt.Sprintf("%d XP", amount)
}

// FormatGold форматирует количество золота в читабельную строку.
// Пример: FormatGold(150) → "150 золотых"
func FormatGold(amount int64) string {
	return fmt.Sprintf("%d %s", amount, PluralizeGold(amount))
}

// abs64 — модуль числа для плюрализации отрицательных сумм.
// Без float64: выше 2^53 конверсия теряет точность.
func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
