package common

import (
	"math"
	"testing"
)

func TestPluralizeDays(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "дней"},
		{1, "день"},
		{2, "дня"},
		{4, "дня"},
		{5, "дней"},
		{11, "дней"},
		{12, "дней"},
		{14, "дней"},
		{21, "день"},
		{22, "дня"},
		{100, "дней"},
		{101, "день"},
		{111, "дней"},
	}
	for _, c := range cases {
		if got := PluralizeDays(c.n); got != c.want {
			t.Errorf("PluralizeDays(%d)=%q, want %q", c.n, got, c.want)
		}
	}
}

func TestPluralizeGoldNegativeAndLarge(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{-1, "золотой"},
		{-22, "золотых"},
		{-50, "золотых"},
		// За пределами точности float64 (2^53) склонение обязано
		// смотреть на настоящие последние цифры числа
		{math.MaxInt64, "золотых"},        // ...807
		{math.MaxInt64 - 6, "золотой"},    // ...801
		{-(math.MaxInt64 - 4), "золотых"}, // ...803
	}
	for _, c := range cases {
		if got := PluralizeGold(c.n); got != c.want {
			t.Errorf("PluralizeGold(%d)=%q, want %q", c.n, got, c.want)
		}
	}
}
