// Package streaks — handlers.go обрабатывает команды:
// !стрики (свои серии) и !стриктоп (топ живых серий).
package streaks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/features/users"
)

// Handler обрабатывает команды стриков.
type Handler struct {
	service     *Service
	userService *users.Service
	bot         *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик команд стриков.
func NewHandler(service *Service, userService *users.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, userService: userService, bot: bot}
}

// HandleStreaks обрабатывает команду !стрики — серии пользователя.
func (h *Handler) HandleStreaks(ctx context.Context, chatID, externalID int64) {
	user, err := h.userService.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "🔥 Серий пока нет. Отметь привычку: !лог <привычка>")
			return
		}
		log.WithError(err).Error("Ошибка чтения пользователя")
		h.sendMessage(chatID, "❌ Ошибка получения стриков")
		return
	}

	overviews, err := h.service.ListForUser(ctx, user.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения стриков")
		h.sendMessage(chatID, "❌ Ошибка получения стриков")
		return
	}
	if len(overviews) == 0 {
		h.sendMessage(chatID, "🔥 Серий пока нет. Отметь привычку: !лог <привычка>")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔥 Твои серии:\n")
	for _, o := range overviews {
		icon := "💤"
		if o.IsActive {
			icon = "🔥"
		}
		fmt.Fprintf(&sb, "%s %s — %d %s (рекорд %d)",
			icon, o.HabitName, o.CurrentLength, common.PluralizeDays(o.CurrentLength), o.BestLength)
		if o.NextMilestone > 0 && o.IsActive {
			fmt.Fprintf(&sb, ", следующий порог %d", o.NextMilestone)
		}
		sb.WriteString("\n")
	}
	h.sendMessage(chatID, sb.String())
}

// HandleLeaderboard обрабатывает команду !стриктоп — топ живых серий.
func (h *Handler) HandleLeaderboard(ctx context.Context, chatID int64) {
	rows, err := h.service.Leaderboard(ctx, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения топа стриков")
		h.sendMessage(chatID, "❌ Ошибка получения топа стриков")
		return
	}
	if len(rows) == 0 {
		h.sendMessage(chatID, "🔥 Живых серий пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔥 Топ серий:\n")
	for i, row := range rows {
		fmt.Fprintf(&sb, "%d. %s — «%s», %d %s\n",
			i+1, row.DisplayName, row.HabitName,
			row.CurrentLength, common.PluralizeDays(row.CurrentLength))
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
