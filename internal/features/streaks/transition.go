// Package streaks — transition.go содержит чистую машину состояний стрика.
// Никакого I/O: вся логика переходов выражена функцией от предыдущей
// записи и сегодняшней даты, чтобы её можно было проверить без БД.
package streaks

import (
	"time"

	"privychka.ru/habit-bot/internal/common"
)

// Advance вычисляет переход стрика при выполнении привычки «сегодня».
//
// Переходы:
//   - записи нет → started: серия 1, рекорд 1;
//   - последнее выполнение сегодня → unchanged: дубль за день, состояние не меняется;
//   - последнее выполнение вчера → continued: серия +1, рекорд подтягивается,
//     проверяются пороги;
//   - иначе (разрыв в 2+ дня или пустая дата при существующей записи) → reset:
//     серия заново с 1, счётчик порогов обнуляется, рекорд не трогается.
//
// Порог засчитывается только в тот вызов, на котором серия впервые его
// достигла или перешагнула, и только если он строго больше уже
// награждённого; за один вызов засчитывается только высший из новых порогов.
//
// Если в записи рекорд меньше текущей серии — данные повреждены,
// возвращается common.ErrStreakCorrupted без какого-либо результата.
func Advance(prev *Streak, today time.Time, milestones []int) (Result, error) {
	today = common.DayOf(today)

	if prev == nil {
		return Result{
			CurrentLength: 1,
			BestLength:    1,
			Transition:    TransitionStarted,
		}, nil
	}

	if prev.BestLength < prev.CurrentLength {
		return Result{}, common.ErrStreakCorrupted
	}

	if prev.LastCompletionDay != nil {
		last := common.DayOf(*prev.LastCompletionDay)

		if last.Equal(today) {
			return Result{
				CurrentLength:        prev.CurrentLength,
				BestLength:           prev.BestLength,
				Transition:           TransitionUnchanged,
				LastMilestoneClaimed: prev.LastMilestoneClaimed,
			}, nil
		}

		yesterday := today.AddDate(0, 0, -1)
		if last.Equal(yesterday) {
			current := prev.CurrentLength + 1
			best := prev.BestLength
			if current > best {
				best = current
			}

			reached, claimed := crossMilestone(prev.CurrentLength, current, prev.LastMilestoneClaimed, milestones)
			return Result{
				CurrentLength:        current,
				BestLength:           best,
				Transition:           TransitionContinued,
				MilestoneReached:     reached,
				LastMilestoneClaimed: claimed,
			}, nil
		}
	}

	// Разрыв: предыдущая серия потеряна, рекорд уже зафиксировал пик
	return Result{
		CurrentLength: 1,
		BestLength:    prev.BestLength,
		Transition:    TransitionReset,
		LostStreak:    prev.CurrentLength,
	}, nil
}

// crossMilestone возвращает высший порог, впервые пересечённый на шаге
// prevLength → current, и обновлённое значение счётчика наград.
// Порог, до которого серия доросла раньше, задним числом не засчитывается.
// Пороги ожидаются отсортированными по возрастанию.
func crossMilestone(prevLength, current, lastClaimed int, milestones []int) (reached, claimed int) {
	claimed = lastClaimed
	for i := len(milestones) - 1; i >= 0; i-- {
		m := milestones[i]
		if prevLength < m && current >= m && m > lastClaimed {
			return m, m
		}
	}
	return 0, claimed
}

// NextMilestone возвращает ближайший порог, который ещё не достигнут.
// Ноль — если серия уже за последним порогом.
func NextMilestone(current int, milestones []int) int {
	for _, m := range milestones {
		if m > current {
			return m
		}
	}
	return 0
}
