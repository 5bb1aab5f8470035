package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow(1) {
			t.Fatalf("сообщение %d отклонено до лимита", i+1)
		}
	}
	if rl.Allow(1) {
		t.Fatal("сообщение сверх лимита пропущено")
	}

	// Лимит на каждого пользователя отдельный
	if !rl.Allow(2) {
		t.Fatal("лимит одного пользователя зацепил другого")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	defer rl.Close()

	if !rl.Allow(1) {
		t.Fatal("первое сообщение отклонено")
	}
	if rl.Allow(1) {
		t.Fatal("второе сообщение пропущено внутри окна")
	}

	time.Sleep(15 * time.Millisecond)
	if !rl.Allow(1) {
		t.Fatal("сообщение после окна отклонено")
	}
}
