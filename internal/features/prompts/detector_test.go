package prompts

import "testing"

func TestIsConfirmation(t *testing.T) {
	yes := []string{
		"сделал",
		"Сделал!",
		"СДЕЛАЛА",
		"готово.",
		"  выполнил  ",
		"+",
		"✅",
		"да",
	}
	for _, text := range yes {
		if !IsConfirmation(text) {
			t.Errorf("IsConfirmation(%q) = false, want true", text)
		}
	}

	no := []string{
		"",
		"не сделал",
		"сделаю завтра",
		"-",
		"привет",
		"сделал зарядку", // несколько слов — не короткое подтверждение
	}
	for _, text := range no {
		if IsConfirmation(text) {
			t.Errorf("IsConfirmation(%q) = true, want false", text)
		}
	}
}
