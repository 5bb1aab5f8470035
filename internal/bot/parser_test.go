package bot

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	cases := []struct {
		text      string
		cmd       string
		args      []string
		isCommand bool
	}{
		{"!лог Медитация", "лог", []string{"Медитация"}, true},
		{"!лог Медитация - 20 минут", "лог", []string{"Медитация", "-", "20", "минут"}, true},
		{".привычки здоровье", "привычки", []string{"здоровье"}, true},
		{"/start", "start", nil, true},
		{"!ЛИДЕРЫ gold", "лидеры", []string{"gold"}, true},
		{"  !сегодня  ", "сегодня", nil, true},
		{"просто текст", "", nil, false},
		{"лог Медитация", "", nil, false},
		{"!", "", nil, false},
		{"", "", nil, false},
	}

	for _, c := range cases {
		cmd, args, isCommand := p.ParseCommand(c.text)
		if cmd != c.cmd || isCommand != c.isCommand || !reflect.DeepEqual(args, c.args) {
			t.Errorf("ParseCommand(%q) = (%q, %v, %v), want (%q, %v, %v)",
				c.text, cmd, args, isCommand, c.cmd, c.args, c.isCommand)
		}
	}
}
