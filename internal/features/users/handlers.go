// Package users — handlers.go обрабатывает команды:
// !статы (профиль) и !лидеры (топ пользователей).
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
)

// Handler обрабатывает команды профиля и топа.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик команд пользователей.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleProfile обрабатывает команду !статы без аргументов — личный профиль.
func (h *Handler) HandleProfile(ctx context.Context, chatID, externalID int64) {
	user, err := h.service.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "👤 Ты ещё не в игре. Отметь первую привычку: !лог <привычка>")
			return
		}
		log.WithError(err).Error("Ошибка чтения профиля")
		h.sendMessage(chatID, "❌ Ошибка получения профиля")
		return
	}

	// Прогресс до следующего уровня
	nextLevelXP := XPForLevel(user.Level + 1)
	text := fmt.Sprintf(
		"👤 %s\n⭐ Уровень: %d\n✨ Опыт: %s (до следующего уровня %s)\n💰 Золото: %s",
		user.DisplayName, user.Level,
		common.FormatXP(user.TotalXP), common.FormatXP(nextLevelXP-user.TotalXP),
		common.FormatGold(user.Gold),
	)
	h.sendMessage(chatID, text)
}

// HandleLeaderboard обрабатывает команду !лидеры [xp|level|gold].
func (h *Handler) HandleLeaderboard(ctx context.Context, chatID int64, args []string) {
	sortBy := "xp"
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "xp", "level", "gold":
			sortBy = strings.ToLower(args[0])
		default:
			h.sendMessage(chatID, "❌ Формат: !лидеры [xp|level|gold]")
			return
		}
	}

	top, err := h.service.Leaderboard(ctx, sortBy, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения топа")
		h.sendMessage(chatID, "❌ Ошибка получения топа")
		return
	}
	if len(top) == 0 {
		h.sendMessage(chatID, "🏆 Топ пока пуст — отметь первую привычку!")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	sb.WriteString("🏆 Топ участников:\n")
	for i, u := range top {
		place := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			place = medals[i]
		}
		switch sortBy {
		case "gold":
			fmt.Fprintf(&sb, "%s %s — %s\n", place, u.DisplayName, common.FormatGold(u.Gold))
		case "level":
			fmt.Fprintf(&sb, "%s %s — уровень %d\n", place, u.DisplayName, u.Level)
		default:
			fmt.Fprintf(&sb, "%s %s — %s\n", place, u.DisplayName, common.FormatXP(u.TotalXP))
		}
	}
	h.sendMessage(chatID, sb.String())
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
