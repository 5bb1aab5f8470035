// Package rewards — repository.go выполняет операции с таблицами
// reward_receipts и inventory. Начисление награды атомарно: эффект
// (опыт/золото/предмет) и квитанция пишутся в одной транзакции.
package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"privychka.ru/habit-bot/internal/common"
	"privychka.ru/habit-bot/internal/features/users"
)

// Repository предоставляет методы для работы с наградами и инвентарём.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий наград.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Dispatch атомарно применяет награду и пишет квитанцию.
// Ровно один эффект на квитанцию: опыт, золото или предмет.
// Для опыта возвращает признак повышения уровня.
func (r *Repository) Dispatch(ctx context.Context, rec *Receipt) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	leveledUp := false
	switch rec.Kind {
	case KindXP:
		leveledUp, err = applyUserDeltas(ctx, tx, rec.UserID, rec.Amount, 0)
	case KindGold:
		_, err = applyUserDeltas(ctx, tx, rec.UserID, 0, rec.Amount)
	case KindItem:
		err = grantItem(ctx, tx, rec.UserID, rec.ItemName)
	default:
		return false, common.ErrInvalidReward
	}
	if err != nil {
		return false, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO reward_receipts (user_id, kind, amount, item_name, description, source, source_id, roll_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		rec.UserID, rec.Kind, rec.Amount, rec.ItemName, rec.Description,
		rec.Source, rec.SourceID, rec.RollValue,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("ошибка записи квитанции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return leveledUp, nil
}

// applyUserDeltas обновляет опыт и золото под блокировкой строки,
// уровень пересчитывается из нового опыта.
func applyUserDeltas(ctx context.Context, tx pgx.Tx, userID, xpDelta, goldDelta int64) (bool, error) {
	var totalXP, gold int64
	err := tx.QueryRow(ctx,
		`SELECT total_xp, gold FROM users WHERE id = $1 FOR UPDATE`, userID,
	).Scan(&totalXP, &gold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, common.ErrUserNotFound
		}
		return false, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}

	res := users.ApplyDeltas(totalXP, gold, xpDelta, goldDelta)

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET total_xp = $2, gold = $3, level = $4, updated_at = NOW()
		WHERE id = $1`,
		userID, res.TotalXP, res.Gold, res.Level,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return res.LeveledUp, nil
}

// grantItem кладёт предмет в инвентарь. Расходники складываются в стопку,
// уникальные предметы при повторной выдаче не меняют инвентарь —
// квитанция при этом всё равно пишется.
func grantItem(ctx context.Context, tx pgx.Tx, userID int64, itemName string) error {
	info, ok := itemCatalog[itemName]
	if !ok {
		return common.ErrItemNotFound
	}

	var query string
	if info.Type == ItemConsumable {
		query = `
			INSERT INTO inventory (user_id, item_name, item_type, description, quantity)
			VALUES ($1, $2, $3, $4, 1)
			ON CONFLICT (user_id, item_name) DO UPDATE
			SET quantity = inventory.quantity + 1, updated_at = NOW()`
	} else {
		query = `
			INSERT INTO inventory (user_id, item_name, item_type, description, quantity)
			VALUES ($1, $2, $3, $4, 1)
			ON CONFLICT (user_id, item_name) DO NOTHING`
	}
	_, err := tx.Exec(ctx, query, userID, itemName, info.Type, info.Description)
	if err != nil {
		return fmt.Errorf("ошибка выдачи предмета: %w", err)
	}
	return nil
}

// HasItem проверяет наличие предмета у пользователя.
func (r *Repository) HasItem(ctx context.Context, userID int64, itemName string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM inventory
			WHERE user_id = $1 AND item_name = $2 AND quantity > 0
		)`, userID, itemName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки инвентаря: %w", err)
	}
	return exists, nil
}

// ListInventory возвращает инвентарь пользователя, сгруппированный по типу.
func (r *Repository) ListInventory(ctx context.Context, userID int64) ([]*InventoryItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, item_name, item_type, description, quantity, acquired_at, updated_at
		FROM inventory
		WHERE user_id = $1 AND quantity > 0
		ORDER BY item_type, item_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения инвентаря: %w", err)
	}
	defer rows.Close()

	var out []*InventoryItem
	for rows.Next() {
		var it InventoryItem
		err := rows.Scan(&it.ID, &it.UserID, &it.ItemName, &it.ItemType,
			&it.Description, &it.Quantity, &it.AcquiredAt, &it.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// ConsumeItem списывает один расходник из инвентаря.
func (r *Repository) ConsumeItem(ctx context.Context, userID int64, itemName string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var itemType string
	var quantity int
	err = tx.QueryRow(ctx, `
		SELECT item_type, quantity FROM inventory
		WHERE user_id = $1 AND item_name = $2 AND quantity > 0
		FOR UPDATE`, userID, itemName,
	).Scan(&itemType, &quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrItemNotFound
		}
		return fmt.Errorf("ошибка чтения инвентаря: %w", err)
	}
	if itemType != ItemConsumable {
		return common.ErrNotConsumable
	}

	if quantity > 1 {
		_, err = tx.Exec(ctx, `
			UPDATE inventory SET quantity = quantity - 1, updated_at = NOW()
			WHERE user_id = $1 AND item_name = $2`, userID, itemName)
	} else {
		_, err = tx.Exec(ctx, `
			DELETE FROM inventory WHERE user_id = $1 AND item_name = $2`, userID, itemName)
	}
	if err != nil {
		return fmt.Errorf("ошибка списания предмета: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// RecentReceipts возвращает последние квитанции пользователя.
func (r *Repository) RecentReceipts(ctx context.Context, userID int64, limit int) ([]*Receipt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, kind, amount, item_name, description, source, source_id, roll_value, created_at
		FROM reward_receipts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения квитанций: %w", err)
	}
	defer rows.Close()

	var out []*Receipt
	for rows.Next() {
		var rec Receipt
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Amount, &rec.ItemName,
			&rec.Description, &rec.Source, &rec.SourceID, &rec.RollValue, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
