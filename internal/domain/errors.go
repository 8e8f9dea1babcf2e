package domain

import "errors"

var (
	// Account errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAccountNotFound        = errors.New("account not found")
	ErrNonZeroBalance         = errors.New("account balance must be zero before deletion")
	ErrNegativeInitialDeposit = errors.New("initial deposit cannot be negative")
	ErrInvalidHolderName      = errors.New("invalid holder name")

	// Storage errors
	ErrPersistence = errors.New("persistence failure")
)
