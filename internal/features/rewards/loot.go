// Package rewards — loot.go реализует бросок d100 по таблице лута.
// Таблица проверяется при создании: полосы должны покрывать 1–100
// без дыр и перекрытий, иначе часть бросков осталась бы без исхода.
package rewards

import (
	"fmt"
	"math/rand"
)

// Table — проверенная таблица лута.
type Table struct {
	entries []LootEntry
}

// defaultEntries — стандартная таблица d100.
// Полоса 1–30 — пустой исход: слова поддержки без начисления.
var defaultEntries = []LootEntry{
	{1, 30, KindEncouragement, 0, "", "получает слова поддержки! 💪"},
	{31, 50, KindXP, 5, "", "находит маленький кристалл опыта! +5 XP ✨"},
	{51, 70, KindGold, 10, "", "находит 10 золотых монет! 💰"},
	{71, 80, KindXP, 15, "", "натыкается на светящуюся сферу опыта! +15 XP 🔮"},
	{81, 85, KindGold, 25, "", "находит небольшой сундук! +25 золота 📦"},
	{86, 90, KindItem, 0, ItemEnergyPotion, "варит Зелье бодрости! Выпей для мотивации! ⚗️"},
	{91, 94, KindXP, 30, "", "активирует древнюю руну опыта! +30 XP 🏛️"},
	{95, 96, KindGold, 50, "", "откапывает спрятанный клад! +50 золота 💎"},
	{97, 98, KindItem, 0, ItemLuckyCharm, "мастерит Талисман удачи! Везение растёт! 🍀"},
	{99, 99, KindXP, 50, "", "пробуждает дух продуктивности! +50 XP 👻"},
	{100, 100, KindItem, 0, ItemCrown, "выковывает Легендарную корону привычек! 👑"},
}

// NewTable проверяет полосы и собирает таблицу.
// Полосы должны идти по возрастанию, стыковаться без дыр и перекрытий
// и покрывать ровно диапазон 1–100.
func NewTable(entries []LootEntry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("таблица лута пуста")
	}
	expected := 1
	for i, e := range entries {
		if e.Min > e.Max {
			return nil, fmt.Errorf("полоса %d: min=%d больше max=%d", i, e.Min, e.Max)
		}
		if e.Min != expected {
			return nil, fmt.Errorf("полоса %d: начинается с %d, ожидалось %d", i, e.Min, expected)
		}
		switch e.Kind {
		case KindXP, KindGold:
			if e.Amount <= 0 {
				return nil, fmt.Errorf("полоса %d: сумма %s должна быть положительной", i, e.Kind)
			}
		case KindItem:
			if _, ok := itemCatalog[e.ItemName]; !ok {
				return nil, fmt.Errorf("полоса %d: неизвестный предмет %q", i, e.ItemName)
			}
		case KindEncouragement:
		default:
			return nil, fmt.Errorf("полоса %d: неизвестный вид награды %q", i, e.Kind)
		}
		expected = e.Max + 1
	}
	if expected != 101 {
		return nil, fmt.Errorf("таблица покрывает 1–%d, ожидалось 1–100", expected-1)
	}
	return &Table{entries: entries}, nil
}

// DefaultTable возвращает стандартную таблицу лута.
func DefaultTable() *Table {
	t, err := NewTable(defaultEntries)
	if err != nil {
		// Стандартная таблица задана в коде, ошибка здесь — дефект сборки
		panic(err)
	}
	return t
}

// Roll делает бросок d100. С талисманом удачи делается второй бросок
// и берётся больший из двух — талисман никогда не ухудшает результат.
func (t *Table) Roll(rng *rand.Rand, hasLuck bool) Outcome {
	roll := rng.Intn(100) + 1
	luckUsed := false
	if hasLuck {
		second := rng.Intn(100) + 1
		if second > roll {
			roll = second
			luckUsed = true
		}
	}
	return Outcome{Roll: roll, LuckUsed: luckUsed, Entry: t.entryFor(roll)}
}

func (t *Table) entryFor(roll int) LootEntry {
	for _, e := range t.entries {
		if roll >= e.Min && roll <= e.Max {
			return e
		}
	}
	// Недостижимо: NewTable гарантирует покрытие 1–100
	return LootEntry{Kind: KindEncouragement}
}
