// Package jobs управляет фоновыми задачами (cron):
// ночное прерывание просроченных серий и ежечасные напоминания.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/config"
	"privychka.ru/habit-bot/internal/features/prompts"
	"privychka.ru/habit-bot/internal/features/streaks"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron          *cron.Cron
	streakService *streaks.Service
	promptService *prompts.Service
	sendFunc      prompts.SendFunc
	cfg           *config.Config
}

// NewScheduler создаёт планировщик задач в часовом поясе бота.
func NewScheduler(
	streakService *streaks.Service,
	promptService *prompts.Service,
	sendFunc prompts.SendFunc,
	cfg *config.Config,
) *Scheduler {
	c := cron.New(cron.WithLocation(common.BotLocation()))

	return &Scheduler{
		cron:          c,
		streakService: streakService,
		promptService: promptService,
		sendFunc:      sendFunc,
		cfg:           cfg,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ночное прерывание серий в 00:05: к этому моменту "вчера" уже
	// зафиксировано, серии с пропуском в 2+ дня обнуляются
	s.cron.AddFunc("5 0 * * *", func() {
		log.Info("[CRON] Прерывание просроченных серий")
		n, err := s.streakService.SweepBroken(ctx, s.cfg.StreakSweepGapDays)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка прерывания серий")
			return
		}
		if n > 0 {
			log.WithField("count", n).Info("[CRON] Серии прерваны")
		}
	})

	// Напоминания каждый час
	if s.cfg.FeaturePromptsEnabled {
		s.cron.AddFunc("0 * * * *", func() {
			log.Debug("[CRON] Проверка напоминаний")
			if err := s.promptService.SendDue(ctx, s.sendFunc); err != nil {
				log.WithError(err).Error("[CRON] Ошибка отправки напоминаний")
			}
		})
	}

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
