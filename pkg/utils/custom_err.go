package utils

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrEmailAlreadyExists      = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrAccountNotVerified      = errors.New("account not verified")
	ErrAlreadyVerified         = errors.New("account already verified")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrEmailDelivery           = errors.New("email could not be sent")
	ErrUnknownPlan             = errors.New("unknown plan")
	ErrPaymentVerification     = errors.New("payment verification failed")
	ErrDatabaseError           = errors.New("database error")
)

// LimitReachedError is a business-rule rejection, not a server fault.
// It carries the counter state so the UI can explain the denial.
type LimitReachedError struct {
	Action string // "upload" | "chat"
	Used   int64
	Limit  int64
}

func (e *LimitReachedError) Error() string {
	return fmt.Sprintf("%s limit reached (%d/%d)", e.Action, e.Used, e.Limit)
}
