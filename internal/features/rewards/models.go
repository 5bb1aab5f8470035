// Package rewards реализует систему случайных наград: бросок d100 по таблице
// лута, квитанции о начислениях и инвентарь предметов.
// models.go описывает структуры данных системы наград.
package rewards

import "time"

// Виды наград.
const (
	KindXP            = "xp"            // бонусный опыт
	KindGold          = "gold"          // золото
	KindItem          = "item"          // предмет в инвентарь
	KindEncouragement = "encouragement" // пустой исход, не начисляется
)

// Источники наград для квитанций.
const (
	SourceCompletion = "completion" // бросок после отметки привычки
	SourceMilestone  = "milestone"  // порог серии
	SourceAdmin      = "admin"      // ручное начисление администратором
)

// Типы предметов.
const (
	ItemConsumable  = "consumable"  // расходник, складывается в стопку
	ItemEquipment   = "equipment"   // экипировка, выдаётся один раз
	ItemCollectible = "collectible" // коллекционный, выдаётся один раз
)

// LootEntry — одна полоса таблицы лута: диапазон броска и награда.
// Для xp/gold заполняется Amount, для item — ItemName.
type LootEntry struct {
	Min         int
	Max         int
	Kind        string
	Amount      int64
	ItemName    string
	Description string
}

// Outcome — результат броска по таблице.
type Outcome struct {
	Roll     int       // итоговое значение кубика (после талисмана)
	LuckUsed bool      // второй бросок талисмана оказался выше первого
	Entry    LootEntry // полоса таблицы, в которую попал бросок
}

// Dropped сообщает, что исход пустой и начислять нечего.
func (o Outcome) Dropped() bool {
	return o.Entry.Kind == KindEncouragement
}

// Receipt — квитанция о начисленной награде. Журнал только дописывается.
type Receipt struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Kind        string    `db:"kind"`
	Amount      int64     `db:"amount"`
	ItemName    string    `db:"item_name"`
	Description string    `db:"description"`
	Source      string    `db:"source"`
	SourceID    int64     `db:"source_id"`
	RollValue   int       `db:"roll_value"` // 0 — награда выдана без броска
	CreatedAt   time.Time `db:"created_at"`
}

// InventoryItem — предмет в инвентаре пользователя.
type InventoryItem struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	ItemName    string    `db:"item_name"`
	ItemType    string    `db:"item_type"`
	Description string    `db:"description"`
	Quantity    int       `db:"quantity"`
	AcquiredAt  time.Time `db:"acquired_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Названия предметов.
const (
	ItemEnergyPotion = "Зелье бодрости"
	ItemLuckyCharm   = "Талисман удачи"
	ItemWeekBadge    = "Значок «Воин недели»"
	ItemCenturion    = "Медаль центуриона"
	ItemAnnualTrophy = "Годовой трофей"
	ItemCrown        = "Легендарная корона привычек"
)

type itemInfo struct {
	Type        string
	Description string
}

// itemCatalog — справочник предметов: тип и описание для инвентаря.
// Расходники складываются в стопку, остальное выдаётся один раз.
var itemCatalog = map[string]itemInfo{
	ItemEnergyPotion: {ItemConsumable, "Волшебный эликсир, поднимающий мотивацию. Напоминает о твоей внутренней силе!"},
	ItemLuckyCharm:   {ItemEquipment, "Мистический талисман, приносящий удачу. Повышает шанс найти награду!"},
	ItemWeekBadge:    {ItemCollectible, "Знак отличия за семь дней подряд. Показывает твою настойчивость!"},
	ItemCenturion:    {ItemCollectible, "Престижная медаль за 100 дней серии. Отмечает твою преданность делу!"},
	ItemAnnualTrophy: {ItemCollectible, "Главный трофей за целый год без пропусков. Ты мастер привычек!"},
	ItemCrown:        {ItemCollectible, "Редчайший из всех предметов. Только самые упорные владеют этой короной!"},
}

// milestoneExtras — особые награды за пороги серии, выдаются вместе с бонусным
// опытом порога.
var milestoneExtras = map[int]LootEntry{
	7:   {Kind: KindItem, ItemName: ItemWeekBadge, Description: "получает Значок «Воин недели» за 7 дней подряд! 🏅"},
	30:  {Kind: KindGold, Amount: 100, Description: "30 дней мастерства! +100 золота 🎖️"},
	100: {Kind: KindItem, ItemName: ItemCenturion, Description: "100 дней серии! Медаль центуриона! 🥇"},
	365: {Kind: KindItem, ItemName: ItemAnnualTrophy, Description: "целый год без пропусков! Годовой трофей! 🏆"},
}
