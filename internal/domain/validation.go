package domain

import (
	"fmt"
	"strings"
)

const (
	MinHolderNameLength = 1
	MaxHolderNameLength = 255
)

// ValidateHolderName validates an account holder's display name. The front
// end already rejects empty names; the ledger checks again so accounts can
// never be created with one.
func ValidateHolderName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinHolderNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidHolderName)
	}

	if len(name) > MaxHolderNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidHolderName, MaxHolderNameLength)
	}

	return nil
}
