package usecase

import (
	"context"

	"github.com/okarpov/bankbook/internal/domain"
)

// Store persists the full account collection as a single document. Save
// fully overwrites prior content; Load returns an empty map (not an error)
// when nothing has been persisted yet. Load may return accounts alongside a
// non-nil error when only part of the document was readable.
type Store interface {
	Load(ctx context.Context) (map[string]domain.AccountSnapshot, error)
	Save(ctx context.Context, accounts map[string]domain.AccountSnapshot) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
