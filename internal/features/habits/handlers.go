// Package habits — handlers.go обрабатывает команды:
// !лог (отметить выполнение), !привычки (список), !сегодня (прогресс дня),
// !статы (статистика привычки).
package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/config"
	"privychka.ru/habit-bot/internal/features/rewards"
	"privychka.ru/habit-bot/internal/features/streaks"
	"privychka.ru/habit-bot/internal/features/users"
)

// Handler обрабатывает команды привычек. Отметка выполнения проходит
// весь конвейер: запись → опыт → стрик → награды порога → бросок d100.
type Handler struct {
	service       *Service
	userService   *users.Service
	streakService *streaks.Service
	rewardService *rewards.Service
	cfg           *config.Config
	bot           *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик команд привычек.
func NewHandler(
	service *Service,
	userService *users.Service,
	streakService *streaks.Service,
	rewardService *rewards.Service,
	cfg *config.Config,
	bot *tgbotapi.BotAPI,
) *Handler {
	return &Handler{
		service:       service,
		userService:   userService,
		streakService: streakService,
		rewardService: rewardService,
		cfg:           cfg,
		bot:           bot,
	}
}

// HandleLog обрабатывает команду !лог <привычка> [- заметка].
//
// Первая отметка за день и повторная дают разные ответы:
// повторная только обновляет заметку, наградных эффектов нет.
func (h *Handler) HandleLog(ctx context.Context, chatID, externalID int64, displayName string, args []string, origin string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "❌ Формат: !лог <привычка> [- заметка]")
		return
	}

	name, note := splitNameAndNote(strings.Join(args, " "))

	user, err := h.userService.GetOrCreate(ctx, externalID, displayName)
	if err != nil {
		log.WithError(err).Error("Ошибка регистрации пользователя")
		h.sendMessage(chatID, "❌ Не удалось записать, попробуй ещё раз")
		return
	}

	habit, suggestions, err := h.service.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrHabitNotFound) {
			if len(suggestions) > 0 {
				var names []string
				for _, s := range suggestions {
					names = append(names, s.Name)
				}
				h.sendMessage(chatID, fmt.Sprintf("❌ Привычка «%s» не найдена. Похожие: %s", name, strings.Join(names, ", ")))
			} else {
				h.sendMessage(chatID, fmt.Sprintf("❌ Привычка «%s» не найдена. Список: !привычки", name))
			}
			return
		}
		log.WithError(err).Error("Ошибка поиска привычки")
		h.sendMessage(chatID, "❌ Не удалось записать, попробуй ещё раз")
		return
	}

	res, err := h.service.RecordCompletion(ctx, user.ID, habit.ID, note, origin)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":  user.ID,
			"habit_id": habit.ID,
		}).Error("Ошибка записи выполнения")
		h.sendMessage(chatID, "❌ Не удалось записать, попробуй ещё раз")
		return
	}

	if !res.IsNewToday {
		h.sendMessage(chatID, fmt.Sprintf("📝 «%s» уже отмечена сегодня — обновил заметку и время", habit.Name))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ «%s» записана! +%s", habit.Name, common.FormatXP(habit.BaseReward))

	_, leveledUp, err := h.userService.AddXP(ctx, user.ID, habit.BaseReward)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Ошибка начисления опыта")
	}

	streakRes, err := h.streakService.Apply(ctx, user.ID, habit.ID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":  user.ID,
			"habit_id": habit.ID,
		}).Error("Ошибка обновления стрика")
	} else {
		switch streakRes.Transition {
		case streaks.TransitionStarted:
			sb.WriteString("\n🔥 Серия началась!")
		case streaks.TransitionContinued:
			fmt.Fprintf(&sb, "\n🔥 Серия: %d %s (рекорд %d)",
				streakRes.CurrentLength, common.PluralizeDays(streakRes.CurrentLength), streakRes.BestLength)
		case streaks.TransitionReset:
			fmt.Fprintf(&sb, "\n💔 Серия из %d %s прервалась — начинаем заново",
				streakRes.LostStreak, common.PluralizeDays(streakRes.LostStreak))
		}
	}

	if h.cfg.FeatureRewardsEnabled {
		if streakRes != nil && streakRes.MilestoneReached > 0 {
			receipts, mLeveledUp, err := h.rewardService.GrantMilestone(
				ctx, user.ID, streakRes.MilestoneReached, habit.BaseReward, res.Completion.ID)
			if err != nil {
				log.WithError(err).WithField("user_id", user.ID).Error("Ошибка начисления наград порога")
			} else {
				for _, rec := range receipts {
					sb.WriteString("\n" + rec.Description)
				}
				leveledUp = leveledUp || mLeveledUp
			}
		}

		receipt, rLeveledUp, err := h.rewardService.RollForCompletion(ctx, user.ID, res.Completion.ID)
		if err != nil {
			log.WithError(err).WithField("user_id", user.ID).Error("Ошибка броска награды")
		} else if receipt != nil {
			sb.WriteString("\n" + receipt.Description)
			leveledUp = leveledUp || rLeveledUp
		}
	}

	if leveledUp {
		if u, err := h.userService.GetByExternalID(ctx, externalID); err == nil {
			fmt.Fprintf(&sb, "\n🆙 Новый уровень: %d!", u.Level)
		} else {
			sb.WriteString("\n🆙 Новый уровень!")
		}
	}

	h.sendMessage(chatID, sb.String())
}

// HandleList обрабатывает команду !привычки [категория].
func (h *Handler) HandleList(ctx context.Context, chatID int64, args []string) {
	category := ""
	if len(args) > 0 {
		category = strings.Join(args, " ")
	}

	habits, err := h.service.List(ctx, category)
	if err != nil {
		log.WithError(err).Error("Ошибка получения списка привычек")
		h.sendMessage(chatID, "❌ Ошибка получения списка привычек")
		return
	}
	if len(habits) == 0 {
		h.sendMessage(chatID, "📋 Привычек пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Привычки:\n")
	for _, habit := range habits {
		fmt.Fprintf(&sb, "• %s — %s", habit.Name, common.FormatXP(habit.BaseReward))
		if habit.Category != "" {
			fmt.Fprintf(&sb, " (%s)", habit.Category)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nОтмечай: !лог <привычка> [- заметка]")
	h.sendMessage(chatID, sb.String())
}

// HandleToday обрабатывает команду !сегодня — прогресс дня.
func (h *Handler) HandleToday(ctx context.Context, chatID, externalID int64) {
	user, err := h.userService.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "📅 Ты ещё ничего не отмечал. Начни: !лог <привычка>")
			return
		}
		log.WithError(err).Error("Ошибка чтения пользователя")
		h.sendMessage(chatID, "❌ Ошибка получения прогресса")
		return
	}

	entries, err := h.service.DailyProgress(ctx, user.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения прогресса дня")
		h.sendMessage(chatID, "❌ Ошибка получения прогресса")
		return
	}

	done := 0
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 Сегодня (%s):\n", common.FormatDate(common.Today()))
	for _, e := range entries {
		if e.Completion != nil {
			fmt.Fprintf(&sb, "✅ %s", e.Habit.Name)
			if e.Completion.Note != "" {
				fmt.Fprintf(&sb, " — %s", e.Completion.Note)
			}
			done++
		} else {
			fmt.Fprintf(&sb, "⬜ %s", e.Habit.Name)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nВыполнено %d из %d", done, len(entries))
	h.sendMessage(chatID, sb.String())
}

// HandleStats обрабатывает команду !статы <привычка> — статистика привычки.
func (h *Handler) HandleStats(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "❌ Формат: !статы <привычка>")
		return
	}
	name := strings.Join(args, " ")

	habit, _, err := h.service.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrHabitNotFound) {
			h.sendMessage(chatID, fmt.Sprintf("❌ Привычка «%s» не найдена", name))
			return
		}
		log.WithError(err).Error("Ошибка поиска привычки")
		h.sendMessage(chatID, "❌ Ошибка получения статистики")
		return
	}

	stats, err := h.service.GetStats(ctx, habit.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения статистики привычки")
		h.sendMessage(chatID, "❌ Ошибка получения статистики")
		return
	}

	text := fmt.Sprintf(
		"📊 «%s»\nВсего выполнений: %d\nУчастников: %d\nЗа последние 7 дней: %d\nНаграда: %s",
		stats.Habit.Name, stats.TotalCompletions, stats.UniqueUsers,
		stats.RecentCompletions, common.FormatXP(stats.Habit.BaseReward),
	)
	h.sendMessage(chatID, text)
}

// splitNameAndNote разбирает "имя - заметка" на имя привычки и заметку.
// Разделитель — первое " - ", чтобы имена с дефисом не ломались.
func splitNameAndNote(raw string) (string, string) {
	if idx := strings.Index(raw, " - "); idx >= 0 {
		return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+3:])
	}
	return strings.TrimSpace(raw), ""
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
