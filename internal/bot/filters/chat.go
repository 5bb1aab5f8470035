// Package filters ограничивает работу бота одним групповым чатом
// и личками его участников.
package filters

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/features/users"
)

// ChatFilter решает, обслуживать ли сообщение.
type ChatFilter struct {
	habitChatID int64
	userService *users.Service
	bot         *tgbotapi.BotAPI
}

// NewChatFilter создаёт фильтр для заданного группового чата.
func NewChatFilter(habitChatID int64, userService *users.Service, bot *tgbotapi.BotAPI) *ChatFilter {
	return &ChatFilter{
		habitChatID: habitChatID,
		userService: userService,
		bot:         bot,
	}
}

// CheckAccess проверяет доступ: групповой чат привычек или личка
// известного участника. Неизвестных в личке проверяем через Telegram API
// на членство в групповом чате.
func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil || message.From == nil {
		return false
	}
	if f.habitChatID == 0 {
		log.WithField("component", "ChatFilter").Error("habitChatID is 0 (ошибка конфигурации)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   chatID,
		"user_id":   userID,
	})

	if chatID == f.habitChatID {
		return true
	}

	if message.Chat.IsPrivate() {
		// Сначала быстро по БД
		_, err := f.userService.GetByExternalID(ctx, userID)
		if err == nil {
			return true
		}
		if !errors.Is(err, common.ErrUserNotFound) {
			logger.WithError(err).Error("Ошибка проверки участника по БД")
			return false
		}

		// БД не знает пользователя — спрашиваем Telegram о членстве в чате
		cm, err := f.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: f.habitChatID,
				UserID: userID,
			},
		})
		if err != nil {
			logger.WithError(err).Error("Ошибка проверки членства через Telegram")
			return false
		}

		switch cm.Status {
		case "creator", "administrator", "member", "restricted":
			if _, err := f.userService.GetOrCreate(ctx, userID, displayName(message.From)); err != nil {
				logger.WithError(err).Warn("Не удалось дозаписать участника в БД (пропускаем всё равно)")
			}
			logger.WithField("tg_status", cm.Status).Info("Доступ в личке: участник чата, дозаписан")
			return true
		default:
			logger.WithField("tg_status", cm.Status).Info("Отказ в личке: не участник чата")
			msg := tgbotapi.NewMessage(chatID, "❌ Бот работает только для участников чата привычек")
			if _, sendErr := f.bot.Send(msg); sendErr != nil {
				logger.WithError(sendErr).Warn("Не удалось отправить отказ")
			}
			return false
		}
	}

	// Чужие группы игнорируем молча
	return false
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
