// Package admin — handlers.go обрабатывает админ-команды в личных сообщениях:
// !админ (вход), !выход, !новая (создать привычку), !выкл (отключить),
// !начислить (корректировка баланса), !проверка (ручной сброс серий).
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/config"
	"privychka.ru/habit-bot/internal/features/habits"
	"privychka.ru/habit-bot/internal/features/rewards"
	"privychka.ru/habit-bot/internal/features/streaks"
	"privychka.ru/habit-bot/internal/features/users"
)

const adminHelp = `🔧 Админ-команды:
!новая <имя> - <XP> - [категория] - [описание] — создать привычку
!выкл <привычка> — отключить привычку
!начислить <участник> - <xp|gold> - <число> - [причина] — корректировка
!проверка — прервать просроченные серии сейчас
!выход — завершить сессию`

// Handler обрабатывает админ-команды.
type Handler struct {
	service       *Service
	userService   *users.Service
	habitService  *habits.Service
	streakService *streaks.Service
	rewardService *rewards.Service
	cfg           *config.Config
	bot           *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(
	service *Service,
	userService *users.Service,
	habitService *habits.Service,
	streakService *streaks.Service,
	rewardService *rewards.Service,
	cfg *config.Config,
	bot *tgbotapi.BotAPI,
) *Handler {
	return &Handler{
		service:       service,
		userService:   userService,
		habitService:  habitService,
		streakService: streakService,
		rewardService: rewardService,
		cfg:           cfg,
		bot:           bot,
	}
}

// HandleAdminMessage обрабатывает сообщение администратора в личке.
// Возвращает true, если сообщение было обработано как админ-действие.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID, externalID int64, displayName, text string) bool {
	if !h.cfg.IsAdmin(externalID) {
		return false
	}

	user, err := h.userService.GetOrCreate(ctx, externalID, displayName)
	if err != nil {
		log.WithError(err).Error("Ошибка регистрации администратора")
		return false
	}

	text = strings.TrimSpace(text)

	// Ждём пароль после "!админ" без аргументов
	if state := h.service.GetState(user.ID); state != nil && state.State == StateAwaitingPassword {
		h.service.ClearState(user.ID)
		h.handleLogin(ctx, chatID, externalID, user.ID, text)
		return true
	}

	cmd, rest, ok := splitCommand(text)
	if !ok {
		return false
	}

	if cmd == "админ" {
		if h.service.HasActiveSession(ctx, user.ID) {
			h.sendMessage(chatID, adminHelp)
			return true
		}
		if rest == "" {
			h.sendMessage(chatID, "🔐 Введи пароль администратора:")
			h.service.SetState(user.ID, StateAwaitingPassword)
			return true
		}
		h.handleLogin(ctx, chatID, externalID, user.ID, rest)
		return true
	}

	// Остальные команды требуют активной сессии
	switch cmd {
	case "выход", "новая", "выкл", "начислить", "проверка":
	default:
		return false
	}
	if !h.service.HasActiveSession(ctx, user.ID) {
		h.sendMessage(chatID, "🔐 Сначала войди: !админ <пароль>")
		return true
	}

	switch cmd {
	case "выход":
		if err := h.service.Logout(ctx, user.ID); err != nil {
			log.WithError(err).Error("Ошибка завершения сессии")
		}
		h.sendMessage(chatID, "👋 Сессия завершена")
	case "новая":
		h.handleCreateHabit(ctx, chatID, rest)
	case "выкл":
		h.handleDeactivateHabit(ctx, chatID, rest)
	case "начислить":
		h.handleGrant(ctx, chatID, rest)
	case "проверка":
		h.handleSweep(ctx, chatID)
	}
	return true
}

func (h *Handler) handleLogin(ctx context.Context, chatID, externalID, userID int64, password string) {
	err := h.service.Login(ctx, externalID, userID, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTooManyAttempts):
			h.sendMessage(chatID, "⛔ Слишком много попыток, подожди час")
		case errors.Is(err, common.ErrWrongPassword):
			h.sendMessage(chatID, "❌ Неверный пароль")
		case errors.Is(err, common.ErrNotAdmin):
			h.sendMessage(chatID, "⛔ Нет доступа")
		default:
			log.WithError(err).Error("Ошибка входа в админ-панель")
			h.sendMessage(chatID, "❌ Ошибка входа, попробуй ещё раз")
		}
		return
	}
	h.sendMessage(chatID, "✅ Аутентификация успешна!\n\n"+adminHelp)
}

// handleCreateHabit: !новая <имя> - <XP> - [категория] - [описание]
func (h *Handler) handleCreateHabit(ctx context.Context, chatID int64, rest string) {
	parts := splitParts(rest)
	if len(parts) < 2 {
		h.sendMessage(chatID, "❌ Формат: !новая <имя> - <XP> - [категория] - [описание]")
		return
	}

	reward, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || reward <= 0 {
		h.sendMessage(chatID, "❌ Награда должна быть положительным числом")
		return
	}

	category, description := "", ""
	if len(parts) > 2 {
		category = parts[2]
	}
	if len(parts) > 3 {
		description = parts[3]
	}

	habit, err := h.habitService.CreateHabit(ctx, parts[0], description, reward, category)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrHabitExists):
			h.sendMessage(chatID, fmt.Sprintf("❌ Привычка «%s» уже существует", parts[0]))
		case errors.Is(err, common.ErrEmptyHabitName):
			h.sendMessage(chatID, "❌ Имя привычки не может быть пустым")
		case errors.Is(err, common.ErrInvalidReward):
			h.sendMessage(chatID, "❌ Награда должна быть положительным числом")
		default:
			log.WithError(err).Error("Ошибка создания привычки")
			h.sendMessage(chatID, "❌ Ошибка создания привычки")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Привычка «%s» создана (+%s за выполнение)",
		habit.Name, common.FormatXP(habit.BaseReward)))
}

// handleDeactivateHabit: !выкл <привычка>
func (h *Handler) handleDeactivateHabit(ctx context.Context, chatID int64, rest string) {
	if rest == "" {
		h.sendMessage(chatID, "❌ Формат: !выкл <привычка>")
		return
	}

	habit, _, err := h.habitService.FindByName(ctx, rest)
	if err != nil {
		if errors.Is(err, common.ErrHabitNotFound) {
			h.sendMessage(chatID, fmt.Sprintf("❌ Привычка «%s» не найдена", rest))
			return
		}
		log.WithError(err).Error("Ошибка поиска привычки")
		h.sendMessage(chatID, "❌ Ошибка отключения привычки")
		return
	}

	if err := h.habitService.Deactivate(ctx, habit.ID); err != nil {
		log.WithError(err).Error("Ошибка отключения привычки")
		h.sendMessage(chatID, "❌ Ошибка отключения привычки")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("🚫 Привычка «%s» отключена. История выполнений сохранена", habit.Name))
}

// handleGrant: !начислить <участник> - <xp|gold> - <число> - [причина]
// Число может быть отрицательным — это и есть корректировка вниз.
func (h *Handler) handleGrant(ctx context.Context, chatID int64, rest string) {
	parts := splitParts(rest)
	if len(parts) < 3 {
		h.sendMessage(chatID, "❌ Формат: !начислить <участник> - <xp|gold> - <число> - [причина]")
		return
	}

	kind := strings.ToLower(parts[1])
	if kind != rewards.KindXP && kind != rewards.KindGold {
		h.sendMessage(chatID, "❌ Вид начисления: xp или gold")
		return
	}

	amount, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || amount == 0 {
		h.sendMessage(chatID, "❌ Число должно быть ненулевым")
		return
	}

	reason := "ручная корректировка"
	if len(parts) > 3 {
		reason = parts[3]
	}

	target, err := h.userService.GetByDisplayName(ctx, strings.TrimPrefix(parts[0], "@"))
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, fmt.Sprintf("❌ Участник «%s» не найден", parts[0]))
			return
		}
		log.WithError(err).Error("Ошибка поиска участника")
		h.sendMessage(chatID, "❌ Ошибка начисления")
		return
	}

	rec, err := h.rewardService.GrantCorrective(ctx, target.ID, kind, amount, reason)
	if err != nil {
		log.WithError(err).Error("Ошибка корректировки баланса")
		h.sendMessage(chatID, "❌ Ошибка начисления")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ %s: %+d %s (%s)", target.DisplayName, amount, kind, rec.Description))
}

// handleSweep прерывает просроченные серии немедленно, не дожидаясь cron.
func (h *Handler) handleSweep(ctx context.Context, chatID int64) {
	n, err := h.streakService.SweepBroken(ctx, h.cfg.StreakSweepGapDays)
	if err != nil {
		log.WithError(err).Error("Ошибка ручного сброса серий")
		h.sendMessage(chatID, "❌ Ошибка сброса серий")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🧹 Прервано серий: %d", n))
}

// splitCommand отделяет команду от аргументов: "!новая Вода - 5" → ("новая", "Вода - 5", true).
// Текст без префикса !/./ командой не считается: в личке это обычное
// сообщение, а пароль перехватывается раньше по состоянию диалога.
func splitCommand(text string) (string, string, bool) {
	prefixed := false
	for _, prefix := range []string{"!", ".", "/"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			prefixed = true
			break
		}
	}
	if !prefixed {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	cmd := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return cmd, "", true
	}
	return cmd, strings.TrimSpace(parts[1]), true
}

// splitParts режет аргументы по " - " и убирает пробелы по краям.
func splitParts(rest string) []string {
	raw := strings.Split(rest, " - ")
	var parts []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
