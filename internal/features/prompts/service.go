// Package prompts — service.go отправляет напоминания по расписанию
// и сопоставляет ответы-подтверждения с привычками.
package prompts

import (
	"context"

	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/config"
)

// SendFunc отправляет текст в чат и возвращает ID сообщения.
type SendFunc func(text string) (int64, error)

// Service управляет напоминаниями.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService создаёт сервис напоминаний.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// defaultSchedules — стартовое расписание, привязано к стандартным привычкам.
var defaultSchedules = []*Schedule{
	{Name: "утренняя зарядка", Text: "🌅 Доброе утро! Время зарядки. Ответь «сделал» или отправь !лог Зарядка", HabitName: "Зарядка", SendHour: 7},
	{Name: "утренняя медитация", Text: "🧘 Пора помедитировать. Ответь «сделал», когда закончишь", HabitName: "Медитация", SendHour: 8},
	{Name: "вечерний дневник", Text: "📔 Перед сном — дневник благодарности. Ответь «сделал», когда запишешь", HabitName: "Дневник благодарности", SendHour: 21},
}

// SeedDefaults добавляет стартовое расписание. Существующие записи не трогаются.
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, sch := range defaultSchedules {
		if err := s.repo.Create(ctx, sch); err != nil {
			return err
		}
	}
	return nil
}

// SendDue отправляет напоминания, чей час наступил. Вызывается ежечасно.
func (s *Service) SendDue(ctx context.Context, send SendFunc) error {
	now := common.Now()
	due, err := s.repo.ListDue(ctx, now.Hour(), common.DayOf(now))
	if err != nil {
		return err
	}

	for _, sch := range due {
		messageID, err := send(sch.Text)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"prompt": sch.Name,
			}).Error("Ошибка отправки напоминания")
			continue
		}
		if err := s.repo.MarkSent(ctx, sch.ID, common.DayOf(now), messageID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"prompt": sch.Name,
			}).Error("Ошибка отметки отправки напоминания")
			continue
		}
		log.WithFields(log.Fields{
			"prompt": sch.Name,
			"habit":  sch.HabitName,
		}).Info("Отправлено напоминание")
	}
	return nil
}

// ResolveReply сопоставляет подтверждение с привычкой напоминания.
// Возвращает имя привычки или пустую строку, если ответ не относится
// к напоминанию или не является подтверждением.
func (s *Service) ResolveReply(ctx context.Context, repliedMessageID int64, text string) (string, error) {
	if !IsConfirmation(text) {
		return "", nil
	}
	sch, err := s.repo.GetByMessageID(ctx, repliedMessageID)
	if err != nil {
		return "", err
	}
	if sch == nil {
		return "", nil
	}
	return sch.HabitName, nil
}

// List возвращает всё расписание напоминаний.
func (s *Service) List(ctx context.Context) ([]*Schedule, error) {
	return s.repo.List(ctx)
}
