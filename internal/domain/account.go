package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one holder's balance and transaction history.
//
// Every balance change is paired with an appended Transaction, so Balance
// always equals the BalanceAfter of the last history entry. No operation
// lets the balance go negative; validation happens before mutation.
type Account struct {
	Number    string
	Holder    string
	Balance   decimal.Decimal
	History   []Transaction
	CreatedAt time.Time
}

// NewAccount creates an account with an initial balance. Creation itself is
// recorded, so History is non-empty from the start.
func NewAccount(number, holder string, initialDeposit decimal.Decimal, txID string) *Account {
	now := time.Now()
	a := &Account{
		Number:    number,
		Holder:    holder,
		Balance:   initialDeposit,
		CreatedAt: now,
	}
	a.record(txID, now, KindCreated, initialDeposit)
	return a
}

// record appends a history entry at the current balance. Callers update
// Balance first.
func (a *Account) record(id string, at time.Time, kind string, amount decimal.Decimal) Transaction {
	tx := Transaction{
		ID:           id,
		Date:         at,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: a.Balance,
	}
	a.History = append(a.History, tx)
	return tx
}

// Deposit increases the balance by amount and records the transaction.
func (a *Account) Deposit(amount decimal.Decimal, txID string) (Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	return a.record(txID, time.Now(), KindDeposit, amount), nil
}

// Withdraw decreases the balance by amount and records the transaction.
func (a *Account) Withdraw(amount decimal.Decimal, txID string) (Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, ErrInvalidAmount
	}
	if amount.GreaterThan(a.Balance) {
		return Transaction{}, ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return a.record(txID, time.Now(), KindWithdrawal, amount.Neg()), nil
}

// RecordTransferOut applies the debit leg of a transfer to peer. Both legs of
// a transfer share the same timestamp, so the ledger passes it in.
func (a *Account) RecordTransferOut(peer string, amount decimal.Decimal, txID string, at time.Time) (Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, ErrInvalidAmount
	}
	if amount.GreaterThan(a.Balance) {
		return Transaction{}, ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return a.record(txID, at, TransferOutKind(peer), amount.Neg()), nil
}

// RecordTransferIn applies the credit leg of a transfer from peer.
func (a *Account) RecordTransferIn(peer string, amount decimal.Decimal, txID string, at time.Time) (Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	return a.record(txID, at, TransferInKind(peer), amount), nil
}
