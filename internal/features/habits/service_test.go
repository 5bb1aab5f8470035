package habits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"privychka.ru/habit-bot/internal/common"
)

// fakeLedger — ledgerStore в памяти для проверки путей RecordCompletion.
type fakeLedger struct {
	habit    *Habit
	habitErr error

	existing *Completion // отдаётся первым GetCompletionForDay
	winner   *Completion // отдаётся после конфликта вставки

	insertErr error

	getCalls    int
	insertCalls int
	touchCalls  int

	insertedNote   string
	insertedOrigin string
	insertedXP     int64
	touchedNote    string
	touchedOrigin  string
}

func (f *fakeLedger) GetActiveByID(ctx context.Context, habitID int64) (*Habit, error) {
	if f.habitErr != nil {
		return nil, f.habitErr
	}
	return f.habit, nil
}

func (f *fakeLedger) GetCompletionForDay(ctx context.Context, userID, habitID int64, day time.Time) (*Completion, error) {
	f.getCalls++
	if f.getCalls == 1 {
		return f.existing, nil
	}
	return f.winner, nil
}

func (f *fakeLedger) InsertCompletion(ctx context.Context, userID, habitID int64, day time.Time, xpAwarded int64, note, origin string) (*Completion, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.insertedNote = note
	f.insertedOrigin = origin
	f.insertedXP = xpAwarded
	return &Completion{
		ID:             101,
		UserID:         userID,
		HabitID:        habitID,
		CompletionDate: day,
		XPAwarded:      xpAwarded,
		Note:           note,
		Origin:         origin,
	}, nil
}

func (f *fakeLedger) TouchCompletion(ctx context.Context, completionID int64, note, origin string) (*Completion, error) {
	f.touchCalls++
	f.touchedNote = note
	f.touchedOrigin = origin
	c := *f.existing
	c.Note = note
	c.Origin = origin
	return &c, nil
}

func testHabit() *Habit {
	return &Habit{ID: 7, Name: "Чтение", BaseReward: 12, IsActive: true}
}

func TestRecordCompletionNewToday(t *testing.T) {
	fake := &fakeLedger{habit: testHabit()}
	s := &Service{ledger: fake}

	res, err := s.RecordCompletion(context.Background(), 1, 7, "глава 3", OriginCommand)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if !res.IsNewToday {
		t.Fatal("первая отметка за день должна дать IsNewToday=true")
	}
	if fake.insertCalls != 1 || fake.touchCalls != 0 {
		t.Fatalf("insert=%d touch=%d, want 1/0", fake.insertCalls, fake.touchCalls)
	}
	if fake.insertedXP != 12 {
		t.Fatalf("xp=%d, want base_reward привычки (12)", fake.insertedXP)
	}
	if res.Habit.ID != 7 || res.Completion.Note != "глава 3" {
		t.Fatalf("неожиданный результат: %+v", res)
	}
}

func TestRecordCompletionDuplicateSameDay(t *testing.T) {
	existing := &Completion{ID: 55, UserID: 1, HabitID: 7, XPAwarded: 12, Note: "утром", Origin: OriginCommand}
	fake := &fakeLedger{habit: testHabit(), existing: existing}
	s := &Service{ledger: fake}

	res, err := s.RecordCompletion(context.Background(), 1, 7, "вечером ещё раз", OriginReaction)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if res.IsNewToday {
		t.Fatal("повторная отметка за день должна дать IsNewToday=false")
	}
	if fake.insertCalls != 0 {
		t.Fatalf("повторная отметка не должна вставлять строку, insert=%d", fake.insertCalls)
	}
	if fake.touchCalls != 1 || fake.touchedNote != "вечером ещё раз" || fake.touchedOrigin != OriginReaction {
		t.Fatalf("touch=%d note=%q origin=%q", fake.touchCalls, fake.touchedNote, fake.touchedOrigin)
	}
	if res.Completion.ID != 55 {
		t.Fatalf("обновляться должна существующая запись, id=%d", res.Completion.ID)
	}
}

func TestRecordCompletionConcurrentInsert(t *testing.T) {
	// Конкурент вставил первым: вставка падает с 23505,
	// метод перечитывает его строку и не отдаёт ошибку наружу.
	winner := &Completion{ID: 42, UserID: 1, HabitID: 7, XPAwarded: 12, Origin: OriginCommand}
	fake := &fakeLedger{
		habit:     testHabit(),
		winner:    winner,
		insertErr: &pgconn.PgError{Code: "23505"},
	}
	s := &Service{ledger: fake}

	res, err := s.RecordCompletion(context.Background(), 1, 7, "", OriginCommand)
	if err != nil {
		t.Fatalf("гонка вставки не должна отдавать ошибку: %v", err)
	}
	if res.IsNewToday {
		t.Fatal("проигравший гонку должен увидеть IsNewToday=false")
	}
	if res.Completion.ID != 42 {
		t.Fatalf("должна вернуться запись победителя, id=%d", res.Completion.ID)
	}
	if fake.getCalls != 2 {
		t.Fatalf("ожидалось перечтение после конфликта, getCalls=%d", fake.getCalls)
	}
}

func TestRecordCompletionInsertErrorSurfaces(t *testing.T) {
	// Любая другая ошибка вставки — не гонка, отдаётся наружу
	storeErr := errors.New("соединение потеряно")
	fake := &fakeLedger{habit: testHabit(), insertErr: storeErr}
	s := &Service{ledger: fake}

	_, err := s.RecordCompletion(context.Background(), 1, 7, "", OriginCommand)
	if !errors.Is(err, storeErr) {
		t.Fatalf("err=%v, want обёртку над ошибкой вставки", err)
	}
}

func TestRecordCompletionUnknownHabit(t *testing.T) {
	fake := &fakeLedger{habitErr: common.ErrHabitNotFound}
	s := &Service{ledger: fake}

	_, err := s.RecordCompletion(context.Background(), 1, 99, "", OriginCommand)
	if !errors.Is(err, common.ErrHabitNotFound) {
		t.Fatalf("err=%v, want ErrHabitNotFound", err)
	}
}

func TestRecordCompletionNormalizesOrigin(t *testing.T) {
	fake := &fakeLedger{habit: testHabit()}
	s := &Service{ledger: fake}

	res, err := s.RecordCompletion(context.Background(), 1, 7, "", "webhook")
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if fake.insertedOrigin != OriginCommand {
		t.Fatalf("origin=%q, want %q", fake.insertedOrigin, OriginCommand)
	}
	if res.Completion.Origin != OriginCommand {
		t.Fatalf("origin записи=%q, want %q", res.Completion.Origin, OriginCommand)
	}
}
