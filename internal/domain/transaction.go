package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds.
const (
	KindCreated    = "created"
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
)

// TransferOutKind labels the debit leg of a transfer to peer.
func TransferOutKind(peer string) string {
	return "transfer-out:" + peer
}

// TransferInKind labels the credit leg of a transfer from peer.
func TransferInKind(peer string) string {
	return "transfer-in:" + peer
}

// Transaction is one immutable record in an account's history.
// Amount is signed: positive for inflows, negative for outflows.
// BalanceAfter is the account balance immediately after the transaction.
type Transaction struct {
	ID           string
	Date         time.Time
	Kind         string
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
}
