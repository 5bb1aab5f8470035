package habits

import "testing"

func TestSplitNameAndNote(t *testing.T) {
	cases := []struct {
		raw  string
		name string
		note string
	}{
		{"Медитация", "Медитация", ""},
		{"Медитация - 20 минут", "Медитация", "20 минут"},
		{"Ранний отбой - лёг в 22:30", "Ранний отбой", "лёг в 22:30"},
		{"Код-ревью", "Код-ревью", ""},
		{"Код-ревью - два PR", "Код-ревью", "два PR"},
		{"Чтение - глава - вторая", "Чтение", "глава - вторая"},
		{"  Вода  ", "Вода", ""},
	}
	for _, c := range cases {
		name, note := splitNameAndNote(c.raw)
		if name != c.name || note != c.note {
			t.Errorf("splitNameAndNote(%q) = (%q, %q), want (%q, %q)", c.raw, name, note, c.name, c.note)
		}
	}
}
