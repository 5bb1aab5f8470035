package streaks

import "testing"

func TestBonusMultiplier(t *testing.T) {
	cases := []struct {
		threshold int
		want      float64
	}{
		{3, 1.2},
		{7, 1.5},
		{14, 2.0},
		{30, 2.5},
		{60, 3.0},
		{100, 4.0},
		{365, 5.0},
		{5, 1.0},
		{0, 1.0},
	}
	for _, c := range cases {
		if got := BonusMultiplier(c.threshold); got != c.want {
			t.Errorf("BonusMultiplier(%d)=%v, want %v", c.threshold, got, c.want)
		}
	}
}

func TestBonusXP(t *testing.T) {
	cases := []struct {
		base      int64
		threshold int
		want      int64
	}{
		{10, 7, 15},
		{10, 3, 12},
		{15, 14, 30},
		{20, 30, 50},
		{12, 3, 14}, // 14.4 округляется вниз
		{10, 5, 10}, // не пороговый день — без множителя
	}
	for _, c := range cases {
		if got := BonusXP(c.base, c.threshold); got != c.want {
			t.Errorf("BonusXP(%d, %d)=%d, want %d", c.base, c.threshold, got, c.want)
		}
	}
}
