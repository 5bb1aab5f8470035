package streaks

import (
	"errors"
	"testing"
	"time"

	"privychka.ru/habit-bot/internal/common"
)

var testMilestones = []int{3, 7, 14, 30, 60, 100, 365}

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, common.BotLocation())
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}

func TestAdvanceStarted(t *testing.T) {
	res, err := Advance(nil, day("2026-08-30"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Transition != TransitionStarted {
		t.Fatalf("transition=%s, want started", res.Transition)
	}
	if res.CurrentLength != 1 || res.BestLength != 1 {
		t.Fatalf("current=%d best=%d, want 1/1", res.CurrentLength, res.BestLength)
	}
	if res.MilestoneReached != 0 {
		t.Fatalf("порог на старте: %d", res.MilestoneReached)
	}
}

func TestAdvanceUnchangedSameDay(t *testing.T) {
	prev := &Streak{
		CurrentLength:        5,
		BestLength:           9,
		LastCompletionDay:    dayPtr("2026-08-30"),
		LastMilestoneClaimed: 3,
	}
	res, err := Advance(prev, day("2026-08-30"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Transition != TransitionUnchanged {
		t.Fatalf("transition=%s, want unchanged", res.Transition)
	}
	if res.CurrentLength != 5 || res.BestLength != 9 || res.LastMilestoneClaimed != 3 {
		t.Fatalf("состояние изменилось: %+v", res)
	}
}

func TestAdvanceContinued(t *testing.T) {
	prev := &Streak{
		CurrentLength:     4,
		BestLength:        4,
		LastCompletionDay: dayPtr("2026-08-29"),
	}
	res, err := Advance(prev, day("2026-08-30"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Transition != TransitionContinued {
		t.Fatalf("transition=%s, want continued", res.Transition)
	}
	if res.CurrentLength != 5 {
		t.Fatalf("current=%d, want 5", res.CurrentLength)
	}
	if res.BestLength != 5 {
		t.Fatalf("рекорд не подтянулся: %d", res.BestLength)
	}
	if res.MilestoneReached != 0 {
		t.Fatalf("лишний порог: %d", res.MilestoneReached)
	}
}

func TestAdvanceContinuedAcrossMonthBoundary(t *testing.T) {
	prev := &Streak{
		CurrentLength:     1,
		BestLength:        1,
		LastCompletionDay: dayPtr("2026-08-31"),
	}
	res, err := Advance(prev, day("2026-09-01"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Transition != TransitionContinued {
		t.Fatalf("граница месяца сломала продолжение: %s", res.Transition)
	}
}

func TestAdvanceMilestone(t *testing.T) {
	prev := &Streak{
		CurrentLength:        6,
		BestLength:           6,
		LastCompletionDay:    dayPtr("2026-08-29"),
		LastMilestoneClaimed: 3,
	}
	res, err := Advance(prev, day("2026-08-30"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.MilestoneReached != 7 {
		t.Fatalf("milestone=%d, want 7", res.MilestoneReached)
	}
	if res.LastMilestoneClaimed != 7 {
		t.Fatalf("claimed=%d, want 7", res.LastMilestoneClaimed)
	}

	// Тот же порог второй раз не засчитывается
	prev2 := &Streak{
		CurrentLength:        7,
		BestLength:           7,
		LastCompletionDay:    dayPtr("2026-08-30"),
		LastMilestoneClaimed: 7,
	}
	res2, err := Advance(prev2, day("2026-08-31"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res2.MilestoneReached != 0 {
		t.Fatalf("порог засчитан повторно: %d", res2.MilestoneReached)
	}
	if res2.LastMilestoneClaimed != 7 {
		t.Fatalf("claimed=%d, want 7", res2.LastMilestoneClaimed)
	}
}

func TestAdvanceMilestoneHighestOnly(t *testing.T) {
	// Серия перепрыгнула сразу два порога (после sweep такое возможно
	// только при догоняющем продолжении, но функция обязана выбрать высший)
	prev := &Streak{
		CurrentLength:        13,
		BestLength:           13,
		LastCompletionDay:    dayPtr("2026-08-29"),
		LastMilestoneClaimed: 0,
	}
	res, err := Advance(prev, day("2026-08-30"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.MilestoneReached != 14 {
		t.Fatalf("milestone=%d, want 14 (высший из новых)", res.MilestoneReached)
	}
}

func TestAdvanceMilestoneNotRetroactive(t *testing.T) {
	// Порог 3 серия прошла раньше, но он не был награждён (claimed=0).
	// Шаг 5 → 6 его не пересекает — задним числом порог не засчитывается.
	prev := &Streak{
		CurrentLength:        5,
		BestLength:           5,
		LastCompletionDay:    dayPtr("2026-08-29"),
		LastMilestoneClaimed: 0,
	}
	res, err := Advance(prev, day("2026-08-30"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.MilestoneReached != 0 {
		t.Fatalf("порог засчитан задним числом: %d", res.MilestoneReached)
	}
	if res.LastMilestoneClaimed != 0 {
		t.Fatalf("claimed=%d, want 0", res.LastMilestoneClaimed)
	}

	// А вот шаг 6 → 7 пересекает порог 7 — он и засчитывается
	prev2 := &Streak{
		CurrentLength:        6,
		BestLength:           6,
		LastCompletionDay:    dayPtr("2026-08-30"),
		LastMilestoneClaimed: 0,
	}
	res2, err := Advance(prev2, day("2026-08-31"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res2.MilestoneReached != 7 {
		t.Fatalf("milestone=%d, want 7", res2.MilestoneReached)
	}
}

func TestAdvanceReset(t *testing.T) {
	prev := &Streak{
		CurrentLength:        12,
		BestLength:           20,
		LastCompletionDay:    dayPtr("2026-08-27"), // разрыв в 3 дня
		LastMilestoneClaimed: 7,
	}
	res, err := Advance(prev, day("2026-08-30"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Transition != TransitionReset {
		t.Fatalf("transition=%s, want reset", res.Transition)
	}
	if res.CurrentLength != 1 {
		t.Fatalf("current=%d, want 1", res.CurrentLength)
	}
	if res.BestLength != 20 {
		t.Fatalf("рекорд пострадал при сбросе: %d", res.BestLength)
	}
	if res.LastMilestoneClaimed != 0 {
		t.Fatalf("счётчик порогов не обнулён: %d", res.LastMilestoneClaimed)
	}
	if res.LostStreak != 12 {
		t.Fatalf("lost=%d, want 12", res.LostStreak)
	}
}

func TestAdvanceResetOnMissingDate(t *testing.T) {
	// Запись есть, а даты нет — считаем серию прерванной
	prev := &Streak{CurrentLength: 4, BestLength: 4}
	res, err := Advance(prev, day("2026-08-30"), testMilestones)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Transition != TransitionReset {
		t.Fatalf("transition=%s, want reset", res.Transition)
	}
}

func TestAdvanceBestNeverBelowCurrent(t *testing.T) {
	prev := &Streak{
		CurrentLength:     3,
		BestLength:        3,
		LastCompletionDay: dayPtr("2026-08-29"),
	}
	for i := 0; i < 10; i++ {
		res, err := Advance(prev, day("2026-08-30").AddDate(0, 0, i), testMilestones)
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if res.BestLength < res.CurrentLength {
			t.Fatalf("best=%d < current=%d", res.BestLength, res.CurrentLength)
		}
		last := common.DayOf(day("2026-08-30").AddDate(0, 0, i))
		prev = &Streak{
			CurrentLength:        res.CurrentLength,
			BestLength:           res.BestLength,
			LastCompletionDay:    &last,
			LastMilestoneClaimed: res.LastMilestoneClaimed,
		}
	}
}

func TestAdvanceCorruptedRecord(t *testing.T) {
	prev := &Streak{
		CurrentLength:     10,
		BestLength:        2, // рекорд меньше серии — повреждение
		LastCompletionDay: dayPtr("2026-08-29"),
	}
	_, err := Advance(prev, day("2026-08-30"), testMilestones)
	if !errors.Is(err, common.ErrStreakCorrupted) {
		t.Fatalf("err=%v, want ErrStreakCorrupted", err)
	}
}

func TestNextMilestone(t *testing.T) {
	if got := NextMilestone(0, testMilestones); got != 3 {
		t.Errorf("NextMilestone(0)=%d, want 3", got)
	}
	if got := NextMilestone(7, testMilestones); got != 14 {
		t.Errorf("NextMilestone(7)=%d, want 14", got)
	}
	if got := NextMilestone(365, testMilestones); got != 0 {
		t.Errorf("NextMilestone(365)=%d, want 0", got)
	}
}
