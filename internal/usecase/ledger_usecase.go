package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/okarpov/bankbook/internal/domain"
)

// DefaultAccountNumberSeed is the first account number allocated when the
// ledger is empty.
const DefaultAccountNumberSeed = 100001

// LedgerUseCase owns the account collection, allocates account numbers,
// coordinates two-sided transfers, and persists after every mutation.
//
// It is intended for exactly one caller context at a time and takes no locks.
// The storage file is likewise unlocked: two processes pointed at the same
// file will overwrite each other's saves.
type LedgerUseCase struct {
	store    Store
	idGen    IDGenerator
	seed     uint64
	logger   zerolog.Logger
	accounts map[string]*domain.Account
}

// NewLedgerUseCase creates a new LedgerUseCase. The ledger starts empty;
// call Load to pick up persisted state.
func NewLedgerUseCase(store Store, idGen IDGenerator, seed uint64, logger zerolog.Logger) *LedgerUseCase {
	if seed == 0 {
		seed = DefaultAccountNumberSeed
	}
	return &LedgerUseCase{
		store:    store,
		idGen:    idGen,
		seed:     seed,
		logger:   logger,
		accounts: make(map[string]*domain.Account),
	}
}

// Load restores persisted accounts. A missing file leaves the ledger empty.
// Records that cannot be restored are skipped and reported; the ledger keeps
// whatever loaded cleanly and the error is returned so the caller can warn.
func (uc *LedgerUseCase) Load(ctx context.Context) error {
	snaps, loadErr := uc.store.Load(ctx)

	skipped := 0
	for key, snap := range snaps {
		if snap.Number != key {
			uc.logger.Warn().Str("key", key).Str("account_number", snap.Number).
				Msg("skipping account record whose key does not match its account number")
			skipped++
			continue
		}
		account, err := domain.RestoreAccount(snap)
		if err != nil {
			uc.logger.Warn().Err(err).Str("account_number", key).Msg("skipping unreadable account record")
			skipped++
			continue
		}
		uc.accounts[account.Number] = account
	}

	if loadErr != nil {
		return loadErr
	}
	if skipped > 0 {
		return fmt.Errorf("%w: %d account record(s) skipped during load", domain.ErrPersistence, skipped)
	}
	return nil
}

// Save serializes the entire account collection to storage, fully
// overwriting prior content.
func (uc *LedgerUseCase) Save(ctx context.Context) error {
	snaps := make(map[string]domain.AccountSnapshot, len(uc.accounts))
	for number, account := range uc.accounts {
		snaps[number] = account.Snapshot()
	}
	return uc.store.Save(ctx, snaps)
}

// AllocateAccountNumber returns the seed value when no accounts exist,
// otherwise one greater than the maximum numeric account number.
func (uc *LedgerUseCase) AllocateAccountNumber() string {
	var max uint64
	for number := range uc.accounts {
		n, err := strconv.ParseUint(number, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return strconv.FormatUint(uc.seed, 10)
	}
	return strconv.FormatUint(max+1, 10)
}

// CreateAccount allocates a number, creates the account with its initial
// balance, and persists. A save failure is returned but the account stays
// usable in memory.
func (uc *LedgerUseCase) CreateAccount(ctx context.Context, holder string, initialDeposit decimal.Decimal) (*domain.Account, error) {
	if initialDeposit.IsNegative() {
		return nil, domain.ErrNegativeInitialDeposit
	}
	if err := domain.ValidateHolderName(holder); err != nil {
		return nil, err
	}

	number := uc.AllocateAccountNumber()
	account := domain.NewAccount(number, strings.TrimSpace(holder), initialDeposit, uc.idGen.Generate())
	uc.accounts[number] = account

	if err := uc.Save(ctx); err != nil {
		return account, err
	}
	return account, nil
}

// FindAccount returns the account or ErrAccountNotFound. Pure lookup.
func (uc *LedgerUseCase) FindAccount(number string) (*domain.Account, error) {
	account, ok := uc.accounts[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
	}
	return account, nil
}

// Deposit adds amount to the account and persists.
func (uc *LedgerUseCase) Deposit(ctx context.Context, number string, amount decimal.Decimal) (domain.Transaction, error) {
	account, err := uc.FindAccount(number)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx, err := account.Deposit(amount, uc.idGen.Generate())
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, uc.Save(ctx)
}

// Withdraw removes amount from the account and persists.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (domain.Transaction, error) {
	account, err := uc.FindAccount(number)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx, err := account.Withdraw(amount, uc.idGen.Generate())
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, uc.Save(ctx)
}

// Transfer moves amount between two accounts as a single unit: everything is
// validated before the first mutation, then the debit and credit legs apply
// with one shared timestamp, each referencing the counterparty's number.
// A self-transfer is tolerated: debit then credit the same account, net
// effect zero, two history entries.
func (uc *LedgerUseCase) Transfer(ctx context.Context, fromNumber, toNumber string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	from, err := uc.FindAccount(fromNumber)
	if err != nil {
		return err
	}
	to, err := uc.FindAccount(toNumber)
	if err != nil {
		return err
	}
	if amount.GreaterThan(from.Balance) {
		return domain.ErrInsufficientFunds
	}

	now := time.Now()
	if _, err := from.RecordTransferOut(toNumber, amount, uc.idGen.Generate(), now); err != nil {
		return err
	}
	if _, err := to.RecordTransferIn(fromNumber, amount, uc.idGen.Generate(), now); err != nil {
		return err
	}

	return uc.Save(ctx)
}

// DeleteAccount removes the account and persists. Only zero-balance accounts
// can be deleted; this is the sole eviction path.
func (uc *LedgerUseCase) DeleteAccount(ctx context.Context, number string) error {
	account, ok := uc.accounts[number]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
	}
	if account.Balance.IsPositive() {
		return domain.ErrNonZeroBalance
	}
	delete(uc.accounts, number)
	return uc.Save(ctx)
}

// ListAccounts returns all accounts in creation order. Account numbers are
// allocated monotonically, so ascending numeric order is creation order.
func (uc *LedgerUseCase) ListAccounts() []*domain.Account {
	out := make([]*domain.Account, 0, len(uc.accounts))
	for _, account := range uc.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		a, aerr := strconv.ParseUint(out[i].Number, 10, 64)
		b, berr := strconv.ParseUint(out[j].Number, 10, 64)
		if aerr != nil || berr != nil {
			return out[i].Number < out[j].Number
		}
		return a < b
	})
	return out
}

// History returns a copy of the account's transaction history.
func (uc *LedgerUseCase) History(number string) ([]domain.Transaction, error) {
	account, err := uc.FindAccount(number)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, len(account.History))
	copy(out, account.History)
	return out, nil
}
