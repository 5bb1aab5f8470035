// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID чата, в котором бот работает (единственный разрешённый групповой чат)
	HabitChatID int64  `envconfig:"HABIT_CHAT_ID" required:"true"`
	AdminIDsRaw string `envconfig:"ADMIN_IDS" default:""`
	AdminIDs    []int64 `envconfig:"-"` // заполним вручную из AdminIDsRaw

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"habit_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`
	// Таймаут одной операции с БД. По истечении транзакция откатывается
	// целиком — половинчатых записей не остаётся.
	DBOpTimeout time.Duration `envconfig:"DB_OP_TIMEOUT" default:"5s"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight          int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Streak ---
	// Пороги стриков для бонусов, по возрастанию
	StreakMilestonesRaw string `envconfig:"STREAK_MILESTONES" default:"3,7,14,30,60,100,365"`
	StreakMilestones    []int  `envconfig:"-"` // заполним вручную
	// Через сколько дней без выполнений стрик считается брошенным (для ночной уборки)
	StreakSweepGapDays int `envconfig:"STREAK_SWEEP_GAP_DAYS" default:"2"`

	// --- Rewards ---
	// Имя предмета-талисмана, дающего второй бросок d100
	LuckyItemName string `envconfig:"REWARDS_LUCKY_ITEM" default:"Талисман удачи"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureRewardsEnabled bool `envconfig:"FEATURE_REWARDS_ENABLED" default:"true"`
	FeaturePromptsEnabled bool `envconfig:"FEATURE_PROMPTS_ENABLED" default:"true"`
}

// Load читает конфигурацию из переменных окружения и валидирует её.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	// Разбираем списки из «сырых» переменных
	ids, err := parseInt64List(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}
	cfg.AdminIDs = ids

	milestones, err := parseIntList(cfg.StreakMilestonesRaw)
	if err != nil {
		return nil, fmt.Errorf("STREAK_MILESTONES: %w", err)
	}
	cfg.StreakMilestones = milestones

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsAdmin проверяет, входит ли пользователь в список администраторов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if c.HabitChatID == 0 {
		return fmt.Errorf("HABIT_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.StreakSweepGapDays < 1 {
		return fmt.Errorf("STREAK_SWEEP_GAP_DAYS должен быть >= 1")
	}
	if len(c.StreakMilestones) == 0 {
		return fmt.Errorf("STREAK_MILESTONES пуст")
	}
	if !sort.IntsAreSorted(c.StreakMilestones) {
		return fmt.Errorf("STREAK_MILESTONES должны идти по возрастанию")
	}
	for i := 1; i < len(c.StreakMilestones); i++ {
		if c.StreakMilestones[i] == c.StreakMilestones[i-1] {
			return fmt.Errorf("STREAK_MILESTONES содержат дубликат %d", c.StreakMilestones[i])
		}
	}
	if c.StreakMilestones[0] <= 0 {
		return fmt.Errorf("порог стрика должен быть положительным")
	}
	return nil
}

// parseInt64List разбирает строку вида "123,456" в список int64.
func parseInt64List(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректное число %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseIntList разбирает строку вида "3,7,14" в список int.
func parseIntList(raw string) ([]int, error) {
	list64, err := parseInt64List(raw)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(list64))
	for _, n := range list64 {
		out = append(out, int(n))
	}
	return out, nil
}
