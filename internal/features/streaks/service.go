// Package streaks — service.go применяет выполнения к сериям.
// Сервис оборачивает чистую машину состояний (transition.go)
// транзакцией с блокировкой строки.
package streaks

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/config"
)

// Service управляет стриками.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService создаёт новый сервис стриков.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Apply применяет сегодняшнее выполнение к серии (пользователь, привычка).
//
// Вся операция — одна транзакция: строка читается FOR UPDATE, переход
// вычисляется чистой функцией Advance, результат записывается. При
// конкурентном создании той же серии вставка проигравшего получает
// unique_violation, перечитывает строку (уже под блокировкой) и
// продолжает как обычный переход.
func (s *Service) Apply(ctx context.Context, userID, habitID int64) (*Result, error) {
	today := common.Today()

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	prev, err := s.repo.GetForUpdate(ctx, tx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if prev == nil {
		inserted, err := s.repo.InsertStarted(ctx, tx, userID, habitID, today)
		if err != nil {
			return nil, err
		}
		if inserted == nil {
			// Конкурент создал строку первым: перечитываем её под
			// блокировкой и применяем обычный переход к его состоянию
			prev, err = s.repo.GetForUpdate(ctx, tx, userID, habitID)
			if err != nil {
				return nil, err
			}
			if prev == nil {
				return nil, fmt.Errorf("стрик исчез после конкурентной вставки (user=%d, habit=%d)", userID, habitID)
			}
		}
	}

	res, err := Advance(prev, today, s.cfg.StreakMilestones)
	if err != nil {
		// Повреждение данных: прерываемся до какой-либо записи
		log.WithFields(log.Fields{
			"user_id":  userID,
			"habit_id": habitID,
		}).Error("Стрик повреждён: рекорд меньше текущей серии")
		return nil, err
	}

	switch res.Transition {
	case TransitionStarted, TransitionUnchanged:
		// started уже вставлен; дубль за день ничего не пишет

	default:
		if err := s.repo.Update(ctx, tx, prev.ID, res.CurrentLength, res.BestLength, today, res.LastMilestoneClaimed); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	logger := log.WithFields(log.Fields{
		"user_id":  userID,
		"habit_id": habitID,
		"current":  res.CurrentLength,
	})
	switch res.Transition {
	case TransitionStarted:
		logger.Info("Начата новая серия")
	case TransitionContinued:
		if res.MilestoneReached > 0 {
			logger.WithField("milestone", res.MilestoneReached).Info("Серия продолжена, достигнут порог")
		} else {
			logger.Debug("Серия продолжена")
		}
	case TransitionReset:
		logger.WithField("lost", res.LostStreak).Info("Серия прервана и начата заново")
	}

	return &res, nil
}

// Get возвращает серию для отображения (без блокировки).
func (s *Service) Get(ctx context.Context, userID, habitID int64) (*Streak, error) {
	return s.repo.Get(ctx, userID, habitID)
}

// ListForUser возвращает сводку серий пользователя.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*Overview, error) {
	return s.repo.ListForUser(ctx, userID, common.Today(), s.cfg.StreakMilestones)
}

// Leaderboard возвращает топ живых серий.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardRow, error) {
	return s.repo.Leaderboard(ctx, common.Today(), limit)
}

// SweepBroken обнуляет брошенные серии: последнее выполнение старше
// gapDays дней назад. Запускается кроном после полуночи.
func (s *Service) SweepBroken(ctx context.Context, gapDays int) (int, error) {
	cutoff := common.Today().AddDate(0, 0, -gapDays)
	count, err := s.repo.SweepBroken(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.WithField("count", count).Info("Обнулены брошенные серии")
	}
	return count, nil
}
