// Package habits — service.go содержит журнал выполнений.
// Главный инвариант: не больше одной записи о выполнении на
// (пользователь, привычка, день) — даже при конкурентных попытках.
package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/db/postgres"
)

// ledgerStore — операции журнала, которыми пользуется RecordCompletion.
// Выделены в интерфейс, чтобы проверять пути записи без живой БД.
type ledgerStore interface {
	GetActiveByID(ctx context.Context, habitID int64) (*Habit, error)
	GetCompletionForDay(ctx context.Context, userID, habitID int64, day time.Time) (*Completion, error)
	InsertCompletion(ctx context.Context, userID, habitID int64, day time.Time, xpAwarded int64, note, origin string) (*Completion, error)
	TouchCompletion(ctx context.Context, completionID int64, note, origin string) (*Completion, error)
}

// Service управляет привычками и журналом выполнений.
type Service struct {
	repo   *Repository
	ledger ledgerStore
}

// NewService создаёт новый сервис привычек.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, ledger: repo}
}

// RecordResult — итог записи выполнения.
type RecordResult struct {
	Completion *Completion
	Habit      *Habit
	IsNewToday bool // true только для первой записи за день
}

// RecordCompletion записывает выполнение привычки за сегодня.
//
// Пути:
//   - запись за сегодня уже есть → обновляем заметку/источник/время,
//     IsNewToday=false, никаких наградных эффектов;
//   - записи нет → вставляем новую, IsNewToday=true;
//   - конкурент успел вставить первым (unique_violation) → перечитываем
//     его запись и возвращаем её с IsNewToday=false. Ошибка гонки
//     не покидает этот метод.
func (s *Service) RecordCompletion(ctx context.Context, userID, habitID int64, note, origin string) (*RecordResult, error) {
	habit, err := s.ledger.GetActiveByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	if origin != OriginCommand && origin != OriginReaction {
		origin = OriginCommand
	}

	today := common.Today()

	existing, err := s.ledger.GetCompletionForDay(ctx, userID, habitID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		updated, err := s.ledger.TouchCompletion(ctx, existing.ID, note, origin)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"user_id":  userID,
			"habit_id": habitID,
		}).Debug("Повторная отметка за день — запись обновлена")
		return &RecordResult{Completion: updated, Habit: habit, IsNewToday: false}, nil
	}

	inserted, err := s.ledger.InsertCompletion(ctx, userID, habitID, today, habit.BaseReward, note, origin)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			// Гонка: конкурентная вставка выиграла. Перечитываем её запись.
			winner, readErr := s.ledger.GetCompletionForDay(ctx, userID, habitID, today)
			if readErr != nil {
				return nil, readErr
			}
			if winner == nil {
				// Строка исчезла между нарушением и перечтением — отдаём исходную ошибку
				return nil, fmt.Errorf("ошибка записи выполнения: %w", err)
			}
			log.WithFields(log.Fields{
				"user_id":  userID,
				"habit_id": habitID,
			}).Debug("Конкурентная вставка выполнения — перечитана существующая запись")
			return &RecordResult{Completion: winner, Habit: habit, IsNewToday: false}, nil
		}
		return nil, fmt.Errorf("ошибка записи выполнения: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"habit":   habit.Name,
		"xp":      habit.BaseReward,
		"origin":  origin,
	}).Info("Выполнение привычки записано")

	return &RecordResult{Completion: inserted, Habit: habit, IsNewToday: true}, nil
}

// CreateHabit добавляет новую привычку после валидации.
func (s *Service) CreateHabit(ctx context.Context, name, description string, baseReward int64, category string) (*Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrEmptyHabitName
	}
	if baseReward <= 0 {
		return nil, common.ErrInvalidReward
	}
	h, err := s.repo.CreateHabit(ctx, name, description, baseReward, category)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"habit": h.Name, "base_reward": h.BaseReward}).Info("Создана привычка")
	return h, nil
}

// FindByName ищет активную привычку по точному имени.
// Если не нашли — возвращает до пяти подсказок по подстроке.
func (s *Service) FindByName(ctx context.Context, name string) (*Habit, []*Habit, error) {
	h, err := s.repo.GetActiveByName(ctx, name)
	if err == nil {
		return h, nil, nil
	}
	if !errors.Is(err, common.ErrHabitNotFound) {
		return nil, nil, err
	}
	suggestions, sErr := s.repo.Suggest(ctx, name, 5)
	if sErr != nil {
		return nil, nil, sErr
	}
	return nil, suggestions, common.ErrHabitNotFound
}

// List возвращает активные привычки (опционально — по категории).
func (s *Service) List(ctx context.Context, category string) ([]*Habit, error) {
	return s.repo.ListActive(ctx, category)
}

// Deactivate отключает привычку.
func (s *Service) Deactivate(ctx context.Context, habitID int64) error {
	if err := s.repo.Deactivate(ctx, habitID); err != nil {
		return err
	}
	log.WithField("habit_id", habitID).Info("Привычка отключена")
	return nil
}

// DailyProgress возвращает прогресс пользователя за сегодня.
func (s *Service) DailyProgress(ctx context.Context, userID int64) ([]*DailyEntry, error) {
	return s.repo.DailyProgress(ctx, userID, common.Today())
}

// GetStats возвращает статистику привычки.
func (s *Service) GetStats(ctx context.Context, habitID int64) (*Stats, error) {
	return s.repo.GetStats(ctx, habitID, common.Today())
}

// defaultHabits — привычки, создаваемые при первом запуске.
var defaultHabits = []struct {
	name        string
	description string
	baseReward  int64
	category    string
}{
	{"Медитация", "Начни день с осознанности", 15, "здоровье"},
	{"Зарядка", "Физическая активность для здоровья", 20, "спорт"},
	{"Чтение", "Расширяй кругозор", 12, "учёба"},
	{"Вода", "Пей воду в течение дня", 5, "здоровье"},
	{"Ранний отбой", "Гигиена сна", 10, "здоровье"},
	{"Дневник благодарности", "Запиши три вещи, за которые благодарен", 8, "здоровье"},
	{"Код-ревью", "Прокачивай навыки программирования", 15, "учёба"},
}

// SeedDefaults создаёт привычки по умолчанию.
// Повторный запуск — no-op: существующие имена пропускаются.
func (s *Service) SeedDefaults(ctx context.Context) error {
	created := 0
	for _, d := range defaultHabits {
		_, err := s.repo.CreateHabit(ctx, d.name, d.description, d.baseReward, d.category)
		if err != nil {
			if errors.Is(err, common.ErrHabitExists) {
				continue
			}
			return err
		}
		created++
	}
	if created > 0 {
		log.WithField("count", created).Info("Созданы привычки по умолчанию")
	}
	return nil
}
