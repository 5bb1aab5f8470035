// Package bot содержит главный модуль бота — запуск polling, маршрутизацию
// команд и привязку подтверждений к напоминаниям.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/bot/filters"
	"privychka.ru/habit-bot/internal/bot/middleware"
	"privychka.ru/habit-bot/internal/config"
	"privychka.ru/habit-bot/internal/features/admin"
	"privychka.ru/habit-bot/internal/features/habits"
	"privychka.ru/habit-bot/internal/features/prompts"
	"privychka.ru/habit-bot/internal/features/rewards"
	"privychka.ru/habit-bot/internal/features/streaks"
	"privychka.ru/habit-bot/internal/features/users"
)

const helpText = `🤖 Бот привычек. Команды:
!лог <привычка> [- заметка] — отметить выполнение
!привычки [категория] — список привычек
!сегодня — прогресс дня
!статы [привычка] — профиль или статистика привычки
!лидеры [xp|level|gold] — топ участников
!стрики — твои серии
!стриктоп — топ серий
!инвентарь — предметы
!награды — последние начисления
!использовать <предмет> — применить расходник

На напоминание можно просто ответить «сделал» или «✅»`

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	userHandler   *users.Handler
	habitHandler  *habits.Handler
	streakHandler *streaks.Handler
	rewardHandler *rewards.Handler
	adminHandler  *admin.Handler

	promptService *prompts.Service

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	userHandler *users.Handler,
	habitHandler *habits.Handler,
	streakHandler *streaks.Handler,
	rewardHandler *rewards.Handler,
	adminHandler *admin.Handler,
	promptService *prompts.Service,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:           api,
		cfg:           cfg,
		chatFilter:    chatFilter,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		userHandler:   userHandler,
		habitHandler:  habitHandler,
		streakHandler: streakHandler,
		rewardHandler: rewardHandler,
		adminHandler:  adminHandler,
		promptService: promptService,
		parser:        NewCommandParser(),
		inflight:      make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.Message == nil || update.Message.Text == "" {
		return
	}
	message := update.Message

	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	if message.From != nil && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	externalID := message.From.ID
	name := displayName(message.From)

	// Админ-команды работают только в личке
	if message.Chat.IsPrivate() {
		if b.adminHandler.HandleAdminMessage(ctx, chatID, externalID, name, message.Text) {
			return
		}
	}

	// Подтверждение в ответ на напоминание бота
	if b.cfg.FeaturePromptsEnabled && message.ReplyToMessage != nil &&
		message.ReplyToMessage.From != nil && message.ReplyToMessage.From.ID == b.api.Self.ID {
		habitName, err := b.promptService.ResolveReply(ctx, int64(message.ReplyToMessage.MessageID), message.Text)
		if err != nil {
			log.WithError(err).Error("Ошибка привязки подтверждения к напоминанию")
		} else if habitName != "" {
			b.habitHandler.HandleLog(ctx, chatID, externalID, name, []string{habitName}, habits.OriginReaction)
			return
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}
	b.routeCommand(ctx, chatID, externalID, name, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, externalID int64, name, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help", "старт", "помощь":
		b.sendMessage(chatID, helpText)

	case "лог":
		b.habitHandler.HandleLog(ctx, chatID, externalID, name, args, habits.OriginCommand)

	case "привычки":
		b.habitHandler.HandleList(ctx, chatID, args)

	case "сегодня":
		b.habitHandler.HandleToday(ctx, chatID, externalID)

	case "статы":
		if len(args) == 0 {
			b.userHandler.HandleProfile(ctx, chatID, externalID)
		} else {
			b.habitHandler.HandleStats(ctx, chatID, args)
		}

	case "лидеры":
		b.userHandler.HandleLeaderboard(ctx, chatID, args)

	case "стрики":
		b.streakHandler.HandleStreaks(ctx, chatID, externalID)

	case "стриктоп":
		b.streakHandler.HandleLeaderboard(ctx, chatID)

	case "инвентарь":
		if b.cfg.FeatureRewardsEnabled {
			b.rewardHandler.HandleInventory(ctx, chatID, externalID)
		} else {
			b.sendMessage(chatID, "🎁 Награды временно отключены")
		}

	case "награды":
		if b.cfg.FeatureRewardsEnabled {
			b.rewardHandler.HandleReceipts(ctx, chatID, externalID)
		} else {
			b.sendMessage(chatID, "🎁 Награды временно отключены")
		}

	case "использовать":
		if b.cfg.FeatureRewardsEnabled {
			b.rewardHandler.HandleUse(ctx, chatID, externalID, args)
		}

	case "админ", "новая", "выкл", "начислить", "проверка", "выход":
		if chatID != externalID {
			b.sendMessage(chatID, "🔐 Админ-команды работают только в личке")
		}
	}
}

// SendChatMessage отправляет текст в групповой чат привычек.
// Используется планировщиком напоминаний; возвращает ID сообщения.
func (b *Bot) SendChatMessage(text string) (int64, error) {
	msg := tgbotapi.NewMessage(b.cfg.HabitChatID, text)
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return int64(sent.MessageID), nil
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
