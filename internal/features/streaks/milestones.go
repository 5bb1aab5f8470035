// Package streaks — milestones.go содержит таблицу бонусных множителей
// за пороги стриков. Таблица монотонно растёт по порогу; порог без
// записи получает множитель 1.0.
package streaks

import "math"

// bonusMultipliers — множители бонусного опыта по порогам.
var bonusMultipliers = map[int]float64{
	3:   1.2, // +20% за трёхдневную серию
	7:   1.5, // +50% за неделю
	14:  2.0, // x2 за две недели
	30:  2.5,
	60:  3.0,
	100: 4.0,
	365: 5.0,
}

// BonusMultiplier возвращает множитель для порога.
func BonusMultiplier(threshold int) float64 {
	if m, ok := bonusMultipliers[threshold]; ok {
		return m
	}
	return 1.0
}

// BonusXP вычисляет бонусный опыт за достижение порога:
// floor(базовая награда привычки × множитель порога).
func BonusXP(baseReward int64, threshold int) int64 {
	return int64(math.Floor(float64(baseReward) * BonusMultiplier(threshold)))
}
