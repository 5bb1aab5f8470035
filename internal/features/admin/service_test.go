package admin

import (
	"testing"
	"time"
)

func TestVerifyArgon2idRejectsMalformedHash(t *testing.T) {
	cases := []struct {
		name string
		hash string
	}{
		{"пустой хеш", ""},
		{"не хеш", "password123"},
		{"мало секций", "$argon2id$v=19$m=65536,t=3,p=2"},
		{"битая соль", "$argon2id$v=19$m=65536,t=3,p=2$???$aGFzaA"},
		{"битые параметры", "$argon2id$v=19$junk$c2FsdA$aGFzaA"},
	}
	for _, c := range cases {
		if verifyArgon2id("пароль", c.hash) {
			t.Errorf("%s: битый хеш принят", c.name)
		}
	}
}

func TestDialogStateExpiry(t *testing.T) {
	s := &Service{states: make(map[int64]*DialogState)}

	s.SetState(1, StateAwaitingPassword)
	st := s.GetState(1)
	if st == nil || st.State != StateAwaitingPassword {
		t.Fatalf("состояние не установлено: %+v", st)
	}

	// Истёкшее состояние не возвращается
	s.states[1].ExpiresAt = time.Now().Add(-time.Minute)
	if s.GetState(1) != nil {
		t.Fatal("истёкшее состояние возвращено")
	}

	s.SetState(2, StateAwaitingPassword)
	s.ClearState(2)
	if s.GetState(2) != nil {
		t.Fatal("состояние не сброшено")
	}
}

func TestGenerateSecureTokenUnique(t *testing.T) {
	a, b := generateSecureToken(), generateSecureToken()
	if a == "" || a == b {
		t.Fatalf("токены не уникальны: %q %q", a, b)
	}
}
