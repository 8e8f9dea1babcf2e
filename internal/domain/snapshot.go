package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the fixed timestamp format used in persisted state.
const TimeLayout = "2006-01-02 15:04:05"

// TransactionRecord is the serialized form of a Transaction.
type TransactionRecord struct {
	ID      string          `json:"id"`
	Date    string          `json:"date"`
	Kind    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// AccountSnapshot is the serialized form of a full Account. It carries no
// behavior; the file store encodes and decodes it as-is.
type AccountSnapshot struct {
	Number    string              `json:"account_number"`
	Holder    string              `json:"account_holder"`
	Balance   decimal.Decimal     `json:"balance"`
	History   []TransactionRecord `json:"transaction_history"`
	CreatedAt string              `json:"created_at"`
}

// Snapshot produces a serializable representation of the account.
func (a *Account) Snapshot() AccountSnapshot {
	snap := AccountSnapshot{
		Number:    a.Number,
		Holder:    a.Holder,
		Balance:   a.Balance,
		History:   make([]TransactionRecord, 0, len(a.History)),
		CreatedAt: a.CreatedAt.Format(TimeLayout),
	}
	for _, tx := range a.History {
		snap.History = append(snap.History, TransactionRecord{
			ID:      tx.ID,
			Date:    tx.Date.Format(TimeLayout),
			Kind:    tx.Kind,
			Amount:  tx.Amount,
			Balance: tx.BalanceAfter,
		})
	}
	return snap
}

// RestoreAccount rebuilds an account from a snapshot. Restoring does not
// record a new "created" transaction; the history comes back exactly as
// persisted.
func RestoreAccount(snap AccountSnapshot) (*Account, error) {
	if strings.TrimSpace(snap.Number) == "" {
		return nil, fmt.Errorf("account record has empty account number")
	}

	createdAt, err := time.ParseInLocation(TimeLayout, snap.CreatedAt, time.Local)
	if err != nil {
		return nil, fmt.Errorf("account %s: parse created_at: %w", snap.Number, err)
	}

	a := &Account{
		Number:    snap.Number,
		Holder:    snap.Holder,
		Balance:   snap.Balance,
		History:   make([]Transaction, 0, len(snap.History)),
		CreatedAt: createdAt,
	}

	for i, rec := range snap.History {
		date, err := time.ParseInLocation(TimeLayout, rec.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("account %s: parse history entry %d date: %w", snap.Number, i, err)
		}
		a.History = append(a.History, Transaction{
			ID:           rec.ID,
			Date:         date,
			Kind:         rec.Kind,
			Amount:       rec.Amount,
			BalanceAfter: rec.Balance,
		})
	}

	return a, nil
}
