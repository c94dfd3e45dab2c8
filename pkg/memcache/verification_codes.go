package mem

import (
	"sync"
	"time"
)

// VerificationCodeStore keeps the short-lived email verification codes.
// Codes are single-use: a successful Consume removes the entry.
type VerificationCodeStore interface {
	Set(email string, code string, ttl time.Duration)

	// Consume returns the stored code for email if not expired, and removes
	// it. Returns "" if missing/expired.
	Consume(email string) string

	Peek(email string) (string, bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

type VerificationCodes struct {
	mu   sync.RWMutex
	data map[string]entry
}

func NewVerificationCodes() *VerificationCodes {
	return &VerificationCodes{
		data: make(map[string]entry),
	}
}

func (s *VerificationCodes) Set(email string, code string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[email] = entry{
		code:      code,
		expiresAt: time.Now().Add(ttl),
	}
}

func (s *VerificationCodes) Consume(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[email]
	if !ok {
		return ""
	}
	if time.Now().After(e.expiresAt) {
		delete(s.data, email) // cleanup expired
		return ""
	}
	delete(s.data, email) // single-use
	return e.code
}

func (s *VerificationCodes) Peek(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[email]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.code, true
}
