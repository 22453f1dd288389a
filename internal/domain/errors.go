package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountInactive    = errors.New("account inactive")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidState       = errors.New("illegal transaction status transition")
	ErrNotesRequired      = errors.New("rejection notes required")
	ErrPinNotSet          = errors.New("transfer pin not set")
	ErrPinMismatch        = errors.New("pin verification failed")
	ErrInvalidPin         = errors.New("pin must be exactly 4 digits")
	ErrVersionConflict    = errors.New("optimistic lock conflict")
	ErrUserInactive       = errors.New("user inactive")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateTransfer  = errors.New("duplicate transfer")
)
