// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/bot"
	"privychka.ru/habit-bot/internal/bot/filters"
	"privychka.ru/habit-bot/internal/config"
	"privychka.ru/habit-bot/internal/db/postgres"
	"privychka.ru/habit-bot/internal/features/admin"
	"privychka.ru/habit-bot/internal/features/habits"
	"privychka.ru/habit-bot/internal/features/prompts"
	"privychka.ru/habit-bot/internal/features/rewards"
	"privychka.ru/habit-bot/internal/features/streaks"
	"privychka.ru/habit-bot/internal/features/users"
	"privychka.ru/habit-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	userRepo := users.NewRepository(pool)
	habitRepo := habits.NewRepository(pool)
	streakRepo := streaks.NewRepository(pool)
	rewardRepo := rewards.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)
	promptRepo := prompts.NewRepository(pool)

	// === 4. Сервисы ===
	userService := users.NewService(userRepo)
	habitService := habits.NewService(habitRepo)
	streakService := streaks.NewService(streakRepo, cfg)
	rewardService := rewards.NewService(rewardRepo, cfg)
	adminService := admin.NewService(adminRepo, cfg)
	promptService := prompts.NewService(promptRepo, cfg)

	// Стартовые данные: стандартные привычки и расписание напоминаний
	if err := habitService.SeedDefaults(ctx); err != nil {
		return nil, fmt.Errorf("ошибка создания стандартных привычек: %w", err)
	}
	if cfg.FeaturePromptsEnabled {
		if err := promptService.SeedDefaults(ctx); err != nil {
			return nil, fmt.Errorf("ошибка создания расписания напоминаний: %w", err)
		}
	}

	// === 5. Обработчики ===
	userHandler := users.NewHandler(userService, botAPI)
	habitHandler := habits.NewHandler(habitService, userService, streakService, rewardService, cfg, botAPI)
	streakHandler := streaks.NewHandler(streakService, userService, botAPI)
	rewardHandler := rewards.NewHandler(rewardService, userService, botAPI)
	adminHandler := admin.NewHandler(adminService, userService, habitService, streakService, rewardService, cfg, botAPI)

	// === 6. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.HabitChatID, userService, botAPI)

	// === 7. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		userHandler,
		habitHandler,
		streakHandler,
		rewardHandler,
		adminHandler,
		promptService,
		chatFilter,
	)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(streakService, promptService, b.SendChatMessage, cfg)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Habits},
		{3, migration003Completions},
		{4, migration004Streaks},
		{5, migration005Rewards},
		{6, migration006Admin},
		{7, migration007Prompts},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    external_id BIGINT UNIQUE NOT NULL,
    display_name VARCHAR(255) NOT NULL,
    total_xp BIGINT NOT NULL DEFAULT 0,
    gold BIGINT NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_active TIMESTAMP NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_external_id ON users(external_id);
`

var migration002Habits = `
CREATE TABLE IF NOT EXISTS habits (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    description TEXT,
    base_reward BIGINT NOT NULL CHECK (base_reward > 0),
    category VARCHAR(100),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_habits_name_lower ON habits(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_habits_category ON habits(category) WHERE is_active;
`

// Уникальное ограничение (user_id, habit_id, completion_date) — сердце
// идемпотентности: одна отметка на пользователя, привычку и день,
// какие бы гонки ни случались на уровне процесса.
var migration003Completions = `
CREATE TABLE IF NOT EXISTS completions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    habit_id BIGINT NOT NULL REFERENCES habits(id),
    completed_at TIMESTAMP NOT NULL DEFAULT NOW(),
    completion_date DATE NOT NULL,
    xp_awarded BIGINT NOT NULL DEFAULT 0,
    note TEXT,
    origin VARCHAR(20) NOT NULL DEFAULT 'command',
    UNIQUE (user_id, habit_id, completion_date)
);
CREATE INDEX IF NOT EXISTS idx_completions_user_date ON completions(user_id, completion_date DESC);
CREATE INDEX IF NOT EXISTS idx_completions_habit ON completions(habit_id);
`

var migration004Streaks = `
CREATE TABLE IF NOT EXISTS streaks (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    habit_id BIGINT NOT NULL REFERENCES habits(id),
    current_length INTEGER NOT NULL DEFAULT 0,
    best_length INTEGER NOT NULL DEFAULT 0,
    last_completion_day DATE,
    last_milestone_claimed INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, habit_id)
);
CREATE INDEX IF NOT EXISTS idx_streaks_user ON streaks(user_id);
CREATE INDEX IF NOT EXISTS idx_streaks_live ON streaks(current_length DESC) WHERE current_length > 0;
`

var migration005Rewards = `
CREATE TABLE IF NOT EXISTS reward_receipts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    kind VARCHAR(20) NOT NULL,
    amount BIGINT NOT NULL DEFAULT 0,
    item_name VARCHAR(255) NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    source VARCHAR(20) NOT NULL,
    source_id BIGINT NOT NULL DEFAULT 0,
    roll_value INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_receipts_user_created ON reward_receipts(user_id, created_at DESC);
CREATE TABLE IF NOT EXISTS inventory (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    item_name VARCHAR(255) NOT NULL,
    item_type VARCHAR(50) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    quantity INTEGER NOT NULL DEFAULT 1,
    acquired_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, item_name)
);
`

var migration006Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT REFERENCES users(id),
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMP,
    last_activity TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMP NOT NULL DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
`

var migration007Prompts = `
CREATE TABLE IF NOT EXISTS prompt_schedules (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) UNIQUE NOT NULL,
    text TEXT NOT NULL,
    habit_name VARCHAR(255) NOT NULL,
    send_hour INTEGER NOT NULL CHECK (send_hour BETWEEN 0 AND 23),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_sent_on DATE,
    last_message_id BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`
