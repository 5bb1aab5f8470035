// Package users — service.go содержит бизнес-логику работы с участниками.
package users

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Service управляет участниками.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис пользователей.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate регистрирует пользователя при первом обращении.
func (s *Service) GetOrCreate(ctx context.Context, externalID int64, displayName string) (*User, error) {
	return s.repo.GetOrCreate(ctx, externalID, displayName)
}

// GetByExternalID возвращает пользователя по Telegram ID.
func (s *Service) GetByExternalID(ctx context.Context, externalID int64) (*User, error) {
	return s.repo.GetByExternalID(ctx, externalID)
}

// GetByDisplayName возвращает пользователя по отображаемому имени.
func (s *Service) GetByDisplayName(ctx context.Context, name string) (*User, error) {
	return s.repo.GetByDisplayName(ctx, name)
}

// AddXP начисляет опыт за выполнение привычки.
// Возвращает обновлённого пользователя и флаг повышения уровня.
// Квитанция здесь не пишется: базовый опыт привычки — не «награда»,
// а прямое следствие выполнения.
func (s *Service) AddXP(ctx context.Context, userID int64, amount int64) (*User, bool, error) {
	u, leveledUp, err := s.repo.ApplyProgress(ctx, userID, amount, 0)
	if err != nil {
		return nil, false, err
	}
	if leveledUp {
		log.WithFields(log.Fields{
			"user_id": userID,
			"level":   u.Level,
		}).Info("Пользователь повысил уровень")
	}
	return u, leveledUp, nil
}

// Leaderboard возвращает топ пользователей по заданному критерию.
func (s *Service) Leaderboard(ctx context.Context, sortBy string, limit int) ([]*User, error) {
	return s.repo.Leaderboard(ctx, sortBy, limit)
}
