package admin

import (
	"reflect"
	"testing"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		text string
		cmd  string
		rest string
		ok   bool
	}{
		{"!админ секрет", "админ", "секрет", true},
		{"!админ", "админ", "", true},
		{"/admin", "admin", "", true},
		{"!новая Вода - 5 - здоровье", "новая", "Вода - 5 - здоровье", true},
		{".выход", "выход", "", true},
		{"!ВЫХОД", "выход", "", true},
		// Без префикса — не команда: обычный текст в личке,
		// «выход» в сообщении не должен закрывать сессию
		{"выход", "", "", false},
		{"привет, как дела?", "", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		cmd, rest, ok := splitCommand(c.text)
		if cmd != c.cmd || rest != c.rest || ok != c.ok {
			t.Errorf("splitCommand(%q) = (%q, %q, %v), want (%q, %q, %v)", c.text, cmd, rest, ok, c.cmd, c.rest, c.ok)
		}
	}
}

func TestSplitParts(t *testing.T) {
	cases := []struct {
		rest string
		want []string
	}{
		{"Вода - 5", []string{"Вода", "5"}},
		{"Ранний отбой - 10 - здоровье - Лечь до 23:00", []string{"Ранний отбой", "10", "здоровье", "Лечь до 23:00"}},
		{"Вася - xp - -50 - фикс двойного начисления", []string{"Вася", "xp", "-50", "фикс двойного начисления"}},
		{"", nil},
	}
	for _, c := range cases {
		if got := splitParts(c.rest); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitParts(%q) = %v, want %v", c.rest, got, c.want)
		}
	}
}
