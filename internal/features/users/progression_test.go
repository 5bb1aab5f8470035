package users

import "testing"

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{10, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{10000, 11},
	}
	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.level {
			t.Errorf("LevelForXP(%d)=%d, want %d", c.xp, got, c.level)
		}
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	if prev != 1 {
		t.Fatalf("LevelForXP(0)=%d, want 1", prev)
	}
	for xp := int64(1); xp <= 50000; xp++ {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("уровень упал: LevelForXP(%d)=%d < %d", xp, level, prev)
		}
		prev = level
	}
}

func TestXPForLevelRoundTrip(t *testing.T) {
	for level := 1; level <= 30; level++ {
		floor := XPForLevel(level)
		if got := LevelForXP(floor); got != level {
			t.Errorf("LevelForXP(XPForLevel(%d))=%d", level, got)
		}
		if level > 1 {
			if got := LevelForXP(floor - 1); got != level-1 {
				t.Errorf("LevelForXP(%d)=%d, want %d", floor-1, got, level-1)
			}
		}
	}
}

func TestApplyDeltasFloorsAtZero(t *testing.T) {
	res := ApplyDeltas(50, 20, -100, -100)
	if res.TotalXP != 0 || res.Gold != 0 {
		t.Fatalf("дельты не упёрлись в ноль: xp=%d gold=%d", res.TotalXP, res.Gold)
	}
	if res.Level != 1 {
		t.Fatalf("level=%d, want 1", res.Level)
	}
	if res.LeveledUp {
		t.Fatal("LeveledUp при падении опыта")
	}
}

func TestApplyDeltasLevelUp(t *testing.T) {
	// 90 + 10 = 100 XP — граница второго уровня
	res := ApplyDeltas(90, 0, 10, 0)
	if !res.LeveledUp || res.Level != 2 {
		t.Fatalf("ожидали повышение до 2, got level=%d leveledUp=%v", res.Level, res.LeveledUp)
	}

	// Первое выполнение с base_reward=10: опыт 10, уровень остаётся 1
	res = ApplyDeltas(0, 0, 10, 0)
	if res.TotalXP != 10 || res.Level != 1 || res.LeveledUp {
		t.Fatalf("первое выполнение: xp=%d level=%d leveledUp=%v", res.TotalXP, res.Level, res.LeveledUp)
	}
}

func TestApplyDeltasGoldOnly(t *testing.T) {
	res := ApplyDeltas(250, 10, 0, 25)
	if res.Gold != 35 {
		t.Fatalf("gold=%d, want 35", res.Gold)
	}
	if res.LeveledUp {
		t.Fatal("золото не должно влиять на уровень")
	}
}
