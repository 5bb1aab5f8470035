// Package prompts — detector.go определяет, является ли ответ на
// напоминание подтверждением выполнения привычки.
package prompts

import "strings"

// confirmWords — слова-подтверждения в ответ на напоминание.
var confirmWords = map[string]struct{}{
	"сделал":    {},
	"сделала":   {},
	"сделано":   {},
	"готово":    {},
	"выполнил":  {},
	"выполнила": {},
	"да":        {},
	"+":         {},
	"✅":         {},
	"👍":         {},
}

// IsConfirmation проверяет, подтверждает ли текст выполнение.
// Регистр не важен. Пунктуация в конце допускается.
func IsConfirmation(text string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = strings.TrimRight(cleaned, "!.,;:)")
	_, ok := confirmWords[cleaned]
	return ok
}
