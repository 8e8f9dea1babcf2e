package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/okarpov/bankbook/internal/adapter/repository/file"
	"github.com/okarpov/bankbook/internal/domain"
	"github.com/okarpov/bankbook/internal/usecase"
	"github.com/okarpov/bankbook/internal/usecase/mocks"
)

func newTestLedger(t *testing.T) (*usecase.LedgerUseCase, *mocks.FakeStore) {
	t.Helper()
	store := mocks.NewFakeStore()
	uc := usecase.NewLedgerUseCase(store, mocks.NewFakeIDGenerator(), 0, zerolog.Nop())
	return uc, store
}

func TestLedgerUseCase_AllocateAccountNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{
			name:     "empty ledger returns seed",
			existing: nil,
			want:     "100001",
		},
		{
			name:     "one greater than maximum",
			existing: []string{"100001", "100007"},
			want:     "100008",
		},
		{
			name:     "gaps are not reused",
			existing: []string{"100001", "100003"},
			want:     "100004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewFakeStore()
			store.Saved = make(map[string]domain.AccountSnapshot)
			for _, number := range tt.existing {
				store.Saved[number] = domain.NewAccount(number, "Holder", decimal.Zero, "tx").Snapshot()
			}

			uc := usecase.NewLedgerUseCase(store, mocks.NewFakeIDGenerator(), 0, zerolog.Nop())
			if err := uc.Load(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := uc.AllocateAccountNumber(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestLedgerUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name        string
		holder      string
		deposit     decimal.Decimal
		expectError error
	}{
		{
			name:    "successful creation",
			holder:  "Alice",
			deposit: decimal.NewFromInt(1000),
		},
		{
			name:        "negative initial deposit",
			holder:      "Alice",
			deposit:     decimal.NewFromInt(-1),
			expectError: domain.ErrNegativeInitialDeposit,
		},
		{
			name:        "empty holder name",
			holder:      "  ",
			deposit:     decimal.NewFromInt(10),
			expectError: domain.ErrInvalidHolderName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newTestLedger(t)

			account, err := uc.CreateAccount(context.Background(), tt.holder, tt.deposit)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				if store.SaveCalls != 0 {
					t.Error("expected no save on rejected creation")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.Number != "100001" {
				t.Errorf("expected number 100001, got %s", account.Number)
			}
			if !account.Balance.Equal(tt.deposit) {
				t.Errorf("expected balance %s, got %s", tt.deposit, account.Balance)
			}
			if len(account.History) != 1 || account.History[0].Kind != domain.KindCreated {
				t.Errorf("expected single created entry, got %+v", account.History)
			}
			if store.SaveCalls != 1 {
				t.Errorf("expected 1 save call, got %d", store.SaveCalls)
			}
		})
	}
}

func TestLedgerUseCase_CreateAccount_SaveErrorSurfaced(t *testing.T) {
	uc, store := newTestLedger(t)
	store.SaveFunc = func(ctx context.Context, accounts map[string]domain.AccountSnapshot) error {
		return domain.ErrPersistence
	}

	account, err := uc.CreateAccount(context.Background(), "Alice", decimal.NewFromInt(100))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if account == nil {
		t.Fatal("expected account despite save failure")
	}

	// In-memory state stays valid for the rest of the session.
	found, err := uc.FindAccount(account.Number)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100, got %s", found.Balance)
	}
}

func TestLedgerUseCase_DepositWithdraw(t *testing.T) {
	ctx := context.Background()
	uc, store := newTestLedger(t)

	account, err := uc.CreateAccount(ctx, "Alice", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uc.Deposit(ctx, account.Number, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected balance 1500, got %s", account.Balance)
	}

	// Over-withdrawal is rejected and changes nothing, including storage.
	saves := store.SaveCalls
	if _, err := uc.Withdraw(ctx, account.Number, decimal.NewFromInt(2000)); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected balance unchanged at 1500, got %s", account.Balance)
	}
	if len(account.History) != 2 {
		t.Errorf("expected history length 2, got %d", len(account.History))
	}
	if store.SaveCalls != saves {
		t.Error("expected no save on rejected withdrawal")
	}

	if _, err := uc.Deposit(ctx, "999999", decimal.NewFromInt(5)); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLedgerUseCase_Transfer(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestLedger(t)

	alice, err := uc.CreateAccount(ctx, "Alice", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bob, err := uc.CreateAccount(ctx, "Bob", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.Transfer(ctx, alice.Number, bob.Number, decimal.NewFromInt(200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !alice.Balance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected Alice balance 300, got %s", alice.Balance)
	}
	if !bob.Balance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected Bob balance 300, got %s", bob.Balance)
	}

	aliceLast := alice.History[len(alice.History)-1]
	bobLast := bob.History[len(bob.History)-1]
	if aliceLast.Kind != domain.TransferOutKind(bob.Number) {
		t.Errorf("expected debit leg referencing %s, got %q", bob.Number, aliceLast.Kind)
	}
	if bobLast.Kind != domain.TransferInKind(alice.Number) {
		t.Errorf("expected credit leg referencing %s, got %q", alice.Number, bobLast.Kind)
	}
	if len(alice.History) != 2 || len(bob.History) != 2 {
		t.Errorf("expected exactly one new entry per side, got %d and %d", len(alice.History), len(bob.History))
	}
}

func TestLedgerUseCase_TransferRejections(t *testing.T) {
	ctx := context.Background()
	uc, store := newTestLedger(t)

	alice, err := uc.CreateAccount(ctx, "Alice", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bob, err := uc.CreateAccount(ctx, "Bob", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name        string
		from, to    string
		amount      decimal.Decimal
		expectError error
	}{
		{"missing source", "999999", bob.Number, decimal.NewFromInt(10), domain.ErrAccountNotFound},
		{"missing target", alice.Number, "999999", decimal.NewFromInt(10), domain.ErrAccountNotFound},
		{"non-positive amount", alice.Number, bob.Number, decimal.Zero, domain.ErrInvalidAmount},
		{"insufficient funds", alice.Number, bob.Number, decimal.NewFromInt(10000), domain.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saves := store.SaveCalls

			err := uc.Transfer(ctx, tt.from, tt.to, tt.amount)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}

			// No partial application: balances, histories, and storage untouched.
			if !alice.Balance.Equal(decimal.NewFromInt(500)) || !bob.Balance.Equal(decimal.NewFromInt(100)) {
				t.Errorf("expected balances unchanged, got %s and %s", alice.Balance, bob.Balance)
			}
			if len(alice.History) != 1 || len(bob.History) != 1 {
				t.Errorf("expected histories unchanged, got %d and %d", len(alice.History), len(bob.History))
			}
			if store.SaveCalls != saves {
				t.Error("expected no save on rejected transfer")
			}
		})
	}
}

func TestLedgerUseCase_SelfTransfer(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestLedger(t)

	alice, err := uc.CreateAccount(ctx, "Alice", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Tolerated when invoked directly: net effect zero, two history entries.
	if err := uc.Transfer(ctx, alice.Number, alice.Number, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !alice.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected balance 500, got %s", alice.Balance)
	}
	if len(alice.History) != 3 {
		t.Fatalf("expected history length 3, got %d", len(alice.History))
	}
	if !alice.Balance.Equal(alice.History[2].BalanceAfter) {
		t.Errorf("expected balance to match last entry, got %s vs %s", alice.Balance, alice.History[2].BalanceAfter)
	}
}

func TestLedgerUseCase_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestLedger(t)

	funded, err := uc.CreateAccount(ctx, "Alice", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	empty, err := uc.CreateAccount(ctx, "Bob", decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.DeleteAccount(ctx, "999999"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if err := uc.DeleteAccount(ctx, funded.Number); !errors.Is(err, domain.ErrNonZeroBalance) {
		t.Fatalf("expected ErrNonZeroBalance, got %v", err)
	}
	if _, err := uc.FindAccount(funded.Number); err != nil {
		t.Error("expected funded account to survive rejected deletion")
	}

	if err := uc.DeleteAccount(ctx, empty.Number); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.FindAccount(empty.Number); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Error("expected deleted account to be gone")
	}
}

func TestLedgerUseCase_ListAccounts(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestLedger(t)

	for _, holder := range []string{"Alice", "Bob", "Carol"} {
		if _, err := uc.CreateAccount(ctx, holder, decimal.Zero); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	accounts := uc.ListAccounts()
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
	for i, want := range []string{"Alice", "Bob", "Carol"} {
		if accounts[i].Holder != want {
			t.Errorf("position %d: expected %s, got %s", i, want, accounts[i].Holder)
		}
	}

	// Re-listing reflects current state, not a frozen snapshot.
	if err := uc.DeleteAccount(ctx, accounts[1].Number); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	accounts = uc.ListAccounts()
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts after deletion, got %d", len(accounts))
	}
	if accounts[0].Holder != "Alice" || accounts[1].Holder != "Carol" {
		t.Errorf("expected Alice then Carol, got %s then %s", accounts[0].Holder, accounts[1].Holder)
	}
}

func TestLedgerUseCase_PersistsAfterEveryMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	idGen.EXPECT().Generate().Return("tx").AnyTimes()
	// One save per mutating call: two creations, one deposit, one transfer.
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(4)

	ctx := context.Background()
	uc := usecase.NewLedgerUseCase(store, idGen, 0, zerolog.Nop())

	alice, err := uc.CreateAccount(ctx, "Alice", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bob, err := uc.CreateAccount(ctx, "Bob", decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Deposit(ctx, alice.Number, decimal.NewFromInt(50)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.Transfer(ctx, alice.Number, bob.Number, decimal.NewFromInt(25)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Pure lookups never hit storage.
	if _, err := uc.FindAccount(alice.Number); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uc.ListAccounts()
}

// Full session against the real file store: the scenario a user drives
// through the CLI, then a fresh ledger loading the same file.
func TestLedgerUseCase_FileStoreScenario(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bank_data.json")

	store := file.NewStore(path, zerolog.Nop())
	uc := usecase.NewLedgerUseCase(store, file.NewULIDGenerator(), 0, zerolog.Nop())
	if err := uc.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	alice, err := uc.CreateAccount(ctx, "Alice", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alice.Number != "100001" {
		t.Errorf("expected number 100001, got %s", alice.Number)
	}

	if _, err := uc.Deposit(ctx, alice.Number, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Withdraw(ctx, alice.Number, decimal.NewFromInt(2000)); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	bob, err := uc.CreateAccount(ctx, "Bob", decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bob.Number != "100002" {
		t.Errorf("expected number 100002, got %s", bob.Number)
	}

	if err := uc.Transfer(ctx, alice.Number, bob.Number, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !alice.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected Alice balance 500, got %s", alice.Balance)
	}
	if !bob.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected Bob balance 1000, got %s", bob.Balance)
	}
	if len(alice.History) != 3 || len(bob.History) != 2 {
		t.Errorf("expected history lengths 3 and 2, got %d and %d", len(alice.History), len(bob.History))
	}

	// Round-trip: a fresh ledger over the same file reproduces everything.
	fresh := usecase.NewLedgerUseCase(file.NewStore(path, zerolog.Nop()), file.NewULIDGenerator(), 0, zerolog.Nop())
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []*domain.Account{alice, bob} {
		got, err := fresh.FindAccount(want.Number)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Holder != want.Holder {
			t.Errorf("expected holder %s, got %s", want.Holder, got.Holder)
		}
		if !got.Balance.Equal(want.Balance) {
			t.Errorf("expected balance %s, got %s", want.Balance, got.Balance)
		}
		if len(got.History) != len(want.History) {
			t.Fatalf("expected history length %d, got %d", len(want.History), len(got.History))
		}
		for i := range want.History {
			if got.History[i].Kind != want.History[i].Kind {
				t.Errorf("entry %d: expected kind %q, got %q", i, want.History[i].Kind, got.History[i].Kind)
			}
			if !got.History[i].BalanceAfter.Equal(want.History[i].BalanceAfter) {
				t.Errorf("entry %d: expected balance_after %s, got %s",
					i, want.History[i].BalanceAfter, got.History[i].BalanceAfter)
			}
		}
	}
}
