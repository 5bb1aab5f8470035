package app

import (
	"strings"
	"testing"
)

// Необязательные текстовые поля репозитории пишут через NULLIF($n, '')
// и читают через COALESCE(col, ''). Такие колонки обязаны допускать NULL:
// явный NULL в NOT NULL колонку даёт ошибку 23502 вместо DEFAULT,
// и обычный "!лог привычка" без заметки падал бы на вставке.
func TestMigrationsNullableOptionalTextColumns(t *testing.T) {
	cases := []struct {
		name      string
		migration string
		column    string
	}{
		{"habits.description", migration002Habits, "description"},
		{"habits.category", migration002Habits, "category"},
		{"completions.note", migration003Completions, "note"},
	}

	for _, c := range cases {
		found := false
		for _, line := range strings.Split(c.migration, "\n") {
			trimmed := strings.TrimSpace(line)
			if !strings.HasPrefix(trimmed, c.column+" ") {
				continue
			}
			found = true
			if strings.Contains(trimmed, "NOT NULL") {
				t.Errorf("%s объявлена NOT NULL, но вставка пишет в неё NULLIF", c.name)
			}
		}
		if !found {
			t.Errorf("колонка %s не найдена в миграции", c.name)
		}
	}
}
