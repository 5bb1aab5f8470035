// Package rewards — service.go координирует выдачу наград: бросок после
// отметки привычки и детерминированные награды за пороги серии.
package rewards

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"privychka.ru/habit-bot/internal/config"
	"privychka.ru/habit-bot/internal/features/streaks"
)

// Service управляет наградами.
type Service struct {
	repo  *Repository
	table *Table
	cfg   *config.Config

	// rand.Rand не потокобезопасен, броски из разных обновлений
	// проходят под мьютексом
	mu  sync.Mutex
	rng *rand.Rand
}

// NewService создаёт сервис наград со стандартной таблицей лута.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{
		repo:  repo,
		table: DefaultTable(),
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RollForCompletion делает бросок d100 за отметку привычки и начисляет
// выпавшую награду. Пустой исход (полоса поддержки) не начисляется —
// возвращается nil без ошибки.
func (s *Service) RollForCompletion(ctx context.Context, userID, completionID int64) (*Receipt, bool, error) {
	hasLuck, err := s.repo.HasItem(ctx, userID, s.cfg.LuckyItemName)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	out := s.table.Roll(s.rng, hasLuck)
	s.mu.Unlock()

	if out.LuckUsed {
		log.WithFields(log.Fields{
			"user_id": userID,
			"roll":    out.Roll,
		}).Info("Талисман удачи улучшил бросок")
	}

	if out.Dropped() {
		log.WithFields(log.Fields{
			"user_id": userID,
			"roll":    out.Roll,
		}).Debug("Пустой исход броска, награда не начисляется")
		return nil, false, nil
	}

	rec := &Receipt{
		UserID:      userID,
		Kind:        out.Entry.Kind,
		Amount:      out.Entry.Amount,
		ItemName:    out.Entry.ItemName,
		Description: fmt.Sprintf("🎲 Выпало %d! %s", out.Roll, out.Entry.Description),
		Source:      SourceCompletion,
		SourceID:    completionID,
		RollValue:   out.Roll,
	}

	leveledUp, err := s.repo.Dispatch(ctx, rec)
	if err != nil {
		return nil, false, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"roll":    out.Roll,
		"kind":    rec.Kind,
	}).Info("Начислена случайная награда")
	return rec, leveledUp, nil
}

// GrantMilestone начисляет награды за достигнутый порог серии:
// бонусный опыт по множителю порога и, для особых порогов,
// дополнительный предмет или золото. Броска здесь нет.
func (s *Service) GrantMilestone(ctx context.Context, userID int64, threshold int, baseReward, sourceID int64) ([]*Receipt, bool, error) {
	bonus := streaks.BonusXP(baseReward, threshold)
	rec := &Receipt{
		UserID: userID,
		Kind:   KindXP,
		Amount: bonus,
		Description: fmt.Sprintf("🔥 Серия %d дней! Бонус +%d XP (×%.1f)",
			threshold, bonus, streaks.BonusMultiplier(threshold)),
		Source:   SourceMilestone,
		SourceID: sourceID,
	}

	leveledUp, err := s.repo.Dispatch(ctx, rec)
	if err != nil {
		return nil, false, err
	}
	receipts := []*Receipt{rec}

	if extra, ok := milestoneExtras[threshold]; ok {
		extraRec := &Receipt{
			UserID:      userID,
			Kind:        extra.Kind,
			Amount:      extra.Amount,
			ItemName:    extra.ItemName,
			Description: extra.Description,
			Source:      SourceMilestone,
			SourceID:    sourceID,
		}
		if _, err := s.repo.Dispatch(ctx, extraRec); err != nil {
			// Бонусный опыт уже начислен, особую награду не теряем молча
			log.WithError(err).WithFields(log.Fields{
				"user_id":   userID,
				"threshold": threshold,
			}).Error("Ошибка выдачи особой награды порога")
		} else {
			receipts = append(receipts, extraRec)
		}
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"threshold": threshold,
		"bonus_xp":  bonus,
	}).Info("Начислены награды за порог серии")
	return receipts, leveledUp, nil
}

// GrantCorrective начисляет или списывает опыт/золото вручную.
// Используется администраторами для исправления ошибок начисления.
func (s *Service) GrantCorrective(ctx context.Context, userID int64, kind string, amount int64, reason string) (*Receipt, error) {
	if kind != KindXP && kind != KindGold {
		return nil, fmt.Errorf("неверный вид начисления %q", kind)
	}
	rec := &Receipt{
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: fmt.Sprintf("🔧 Корректировка: %s", reason),
		Source:      SourceAdmin,
	}
	if _, err := s.repo.Dispatch(ctx, rec); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"kind":    kind,
		"amount":  amount,
	}).Warn("Ручная корректировка баланса")
	return rec, nil
}

// Inventory возвращает инвентарь пользователя.
func (s *Service) Inventory(ctx context.Context, userID int64) ([]*InventoryItem, error) {
	return s.repo.ListInventory(ctx, userID)
}

// UseConsumable списывает расходник из инвентаря.
func (s *Service) UseConsumable(ctx context.Context, userID int64, itemName string) error {
	if err := s.repo.ConsumeItem(ctx, userID, itemName); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"item":    itemName,
	}).Info("Использован расходник")
	return nil
}

// RecentReceipts возвращает последние квитанции пользователя.
func (s *Service) RecentReceipts(ctx context.Context, userID int64, limit int) ([]*Receipt, error) {
	return s.repo.RecentReceipts(ctx, userID, limit)
}
