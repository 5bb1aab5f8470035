// Package rewards — handlers.go обрабатывает команды:
// !инвентарь, !награды (последние квитанции), !использовать <предмет>.
package rewards

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

// Handler обрабатывает команды наград и инвентаря.
type Handler struct {
	service     *Service
	userService *users.Service
	bot         *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик команд наград.
func NewHandler(service *Service, userService *users.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, userService: userService, bot: bot}
}

var itemTypeIcons = map[string]string{
	ItemConsumable:  "🧪",
	ItemEquipment:   "🍀",
	ItemCollectible: "🏆",
}

// HandleInventory обрабатывает команду !инвентарь.
func (h *Handler) HandleInventory(ctx context.Context, chatID, externalID int64) {
	user, err := h.userService.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "🎒 Инвентарь пуст. Предметы выпадают за отметки привычек")
			return
		}
		log.WithError(err).Error("Ошибка чтения пользователя")
		h.sendMessage(chatID, "❌ Ошибка получения инвентаря")
		return
	}

	items, err := h.service.Inventory(ctx, user.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения инвентаря")
		h.sendMessage(chatID, "❌ Ошибка получения инвентаря")
		return
	}
	if len(items) == 0 {
		h.sendMessage(chatID, "🎒 Инвентарь пуст. Предметы выпадают за отметки привычек")
		return
	}

	var sb strings.Builder
	sb.WriteString("🎒 Инвентарь:\n")
	for _, it := range items {
		icon, ok := itemTypeIcons[it.ItemType]
		if !ok {
			icon = "📦"
		}
		fmt.Fprintf(&sb, "%s %s", icon, it.ItemName)
		if it.Quantity > 1 {
			fmt.Fprintf(&sb, " ×%d", it.Quantity)
		}
		fmt.Fprintf(&sb, "\n   %s\n", it.Description)
	}
	h.sendMessage(chatID, sb.String())
}

// HandleReceipts обрабатывает команду !награды — последние начисления.
func (h *Handler) HandleReceipts(ctx context.Context, chatID, externalID int64) {
	user, err := h.userService.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "🎁 Наград пока нет. Отметь привычку: !лог <привычка>")
			return
		}
		log.WithError(err).Error("Ошибка чтения пользователя")
		h.sendMessage(chatID, "❌ Ошибка получения наград")
		return
	}

	receipts, err := h.service.RecentReceipts(ctx, user.ID, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения квитанций")
		h.sendMessage(chatID, "❌ Ошибка получения наград")
		return
	}
	if len(receipts) == 0 {
		h.sendMessage(chatID, "🎁 Наград пока нет. Отметь привычку: !лог <привычка>")
		return
	}

	var sb strings.Builder
	sb.WriteString("🎁 Последние награды:\n")
	for _, rec := range receipts {
		fmt.Fprintf(&sb, "• %s — %s\n", common.FormatDate(rec.CreatedAt), rec.Description)
	}
	h.sendMessage(chatID, sb.String())
}

// HandleUse обрабатывает команду !использовать <предмет>.
func (h *Handler) HandleUse(ctx context.Context, chatID, externalID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "❌ Формат: !использовать <предмет>")
		return
	}
	itemName := strings.Join(args, " ")

	user, err := h.userService.GetByExternalID(ctx, externalID)
	if err != nil {
		h.sendMessage(chatID, "❌ Сначала отметь хотя бы одну привычку")
		return
	}

	err = h.service.UseConsumable(ctx, user.ID, itemName)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrItemNotFound):
			h.sendMessage(chatID, fmt.Sprintf("❌ Предмета «%s» нет в инвентаре", itemName))
		case errors.Is(err, common.ErrNotConsumable):
			h.sendMessage(chatID, fmt.Sprintf("❌ «%s» нельзя использовать — это не расходник", itemName))
		default:
			log.WithError(err).Error("Ошибка использования предмета")
			h.sendMessage(chatID, "❌ Не удалось использовать предмет")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("🧪 «%s» использован. Вперёд, к привычкам!", itemName))
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
