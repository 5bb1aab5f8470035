// Package users — progression.go содержит чистую математику прогрессии.
// Никакого I/O: уровень — всегда функция от накопленного опыта,
// отдельно он не хранится иначе как кешем этой функции.
package users

import "math"

// LevelForXP вычисляет уровень по накопленному опыту.
//
// Формула: floor(sqrt(xp / 100)) + 1, минимум 1.
// Уровень 1 = 0–99 XP, уровень 2 = 100–399 XP, уровень 3 = 400–899 XP и т.д.
func LevelForXP(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}
	level := int(math.Sqrt(float64(totalXP)/100)) + 1
	if level < 1 {
		level = 1
	}
	return level
}

// XPForLevel возвращает нижнюю границу опыта для уровня.
// Обратная функция к LevelForXP: XPForLevel(2) = 100, XPForLevel(3) = 400.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return n * n * 100
}

// ProgressResult — результат применения дельт опыта и золота.
type ProgressResult struct {
	TotalXP   int64 // Новый накопленный опыт
	Gold      int64 // Новое золото
	Level     int   // Пересчитанный уровень
	LeveledUp bool  // Уровень вырос?
}

// ApplyDeltas применяет дельты опыта и золота к текущим значениям.
// Оба значения не опускаются ниже нуля; уровень пересчитывается
// заново при каждом изменении опыта.
func ApplyDeltas(totalXP, gold int64, xpDelta, goldDelta int64) ProgressResult {
	oldLevel := LevelForXP(totalXP)

	newXP := totalXP + xpDelta
	if newXP < 0 {
		newXP = 0
	}
	newGold := gold + goldDelta
	if newGold < 0 {
		newGold = 0
	}

	newLevel := LevelForXP(newXP)
	return ProgressResult{
		TotalXP:   newXP,
		Gold:      newGold,
		Level:     newLevel,
		LeveledUp: newLevel > oldLevel,
	}
}
