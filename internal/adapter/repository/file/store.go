// Package file persists the ledger as a single JSON document. The whole
// document is rewritten on every save; nothing is appended or streamed.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/okarpov/bankbook/internal/domain"
)

// Store implements usecase.Store on top of a flat JSON file.
type Store struct {
	path    string
	logger  zerolog.Logger
	retrier *Retrier
}

// NewStore creates a Store writing to path.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{
		path:    path,
		logger:  logger,
		retrier: NewRetrier(logger),
	}
}

// document is the persisted layout. Account records are kept raw on load so
// one undecodable record does not discard the rest.
type document struct {
	Accounts map[string]json.RawMessage `json:"accounts"`
}

type saveDocument struct {
	Accounts map[string]domain.AccountSnapshot `json:"accounts"`
}

// Load reads the persisted document. A missing file yields an empty map and
// no error. A document that cannot be decoded at all yields an empty map and
// an error. Individual account records that fail to decode are skipped; the
// readable ones are returned alongside the error.
func (s *Store) Load(ctx context.Context) (map[string]domain.AccountSnapshot, error) {
	snaps := make(map[string]domain.AccountSnapshot)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return snaps, nil
	}
	if err != nil {
		return snaps, fmt.Errorf("%w: read %s: %v", domain.ErrPersistence, s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return snaps, fmt.Errorf("%w: decode %s: %v", domain.ErrPersistence, s.path, err)
	}

	var bad []string
	for number, raw := range doc.Accounts {
		var snap domain.AccountSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			s.logger.Warn().Err(err).Str("account_number", number).Msg("skipping undecodable account record")
			bad = append(bad, number)
			continue
		}
		snaps[number] = snap
	}

	if len(bad) > 0 {
		sort.Strings(bad)
		return snaps, fmt.Errorf("%w: undecodable account record(s): %s", domain.ErrPersistence, strings.Join(bad, ", "))
	}
	return snaps, nil
}

// Save rewrites the document. The bytes go to a temp file which then renames
// over the target, so a crash mid-write cannot corrupt the existing file.
// Transient write failures are retried with backoff.
func (s *Store) Save(ctx context.Context, accounts map[string]domain.AccountSnapshot) error {
	data, err := json.MarshalIndent(saveDocument{Accounts: accounts}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", domain.ErrPersistence, err)
	}

	err = s.retrier.Retry(ctx, func() error {
		return s.replaceFile(data)
	})
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrPersistence, s.path, err)
	}
	return nil
}

func (s *Store) replaceFile(data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
