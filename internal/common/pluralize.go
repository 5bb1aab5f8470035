// Package common — pluralize.go содержит вспомогательные функции
// для правильного склонения русских числительных.
package common

// PluralizeDays возвращает правильную форму слова «день» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "день" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "дня" (2, 3, 4, 22, ...)
//   - Остальные случаи → "дней" (0, 5-20, 25-30, 100, ...)
func PluralizeDays(n int) string {
	return pluralize(int64(n), "день", "дня", "дней")
}

// PluralizeGold возвращает правильную форму слова «золотой».
//
// Примеры:
//
//	PluralizeGold(1)  → "золотой"
//	PluralizeGold(3)  → "золотых"
//	PluralizeGold(21) → "золотой"
func PluralizeGold(n int64) string {
	return pluralize(n, "золотой", "золотых", "золотых")
}

// PluralizeCompletions возвращает правильную форму слова «выполнение».
func PluralizeCompletions(n int) string {
	return pluralize(int64(n), "выполнение", "выполнения", "выполнений")
}

// pluralize выбирает форму слова по общим правилам склонения числительных.
func pluralize(n int64, one, few, many string) string {
	absN := abs64(n)
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}

	return many
}
