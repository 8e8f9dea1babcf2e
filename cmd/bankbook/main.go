package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/okarpov/bankbook/internal/adapter/repository/file"
	"github.com/okarpov/bankbook/internal/domain"
	"github.com/okarpov/bankbook/internal/infrastructure/config"
	"github.com/okarpov/bankbook/internal/infrastructure/logger"
	"github.com/okarpov/bankbook/internal/usecase"
)

var dataFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankbook",
		Short: "Personal bookkeeping tool",
		Long:  `bankbook maintains named accounts with balances and transaction histories in a flat file.`,
	}

	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "", "Path to the data file (overrides BANKBOOK_DATA_FILE)")

	rootCmd.AddCommand(
		createCmd(),
		depositCmd(),
		withdrawCmd(),
		transferCmd(),
		infoCmd(),
		historyCmd(),
		listCmd(),
		deleteCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLedger wires config, logger, store, and ledger, then loads persisted
// state. A load failure is reported but never fatal: the session continues
// with whatever accounts were readable.
func newLedger(ctx context.Context) (*usecase.LedgerUseCase, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	path := cfg.DataFile
	if dataFile != "" {
		path = dataFile
	}

	store := file.NewStore(path, log)
	ledger := usecase.NewLedgerUseCase(store, file.NewULIDGenerator(), cfg.AccountSeed, log)

	if err := ledger.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("some persisted state could not be loaded")
	}

	return ledger, log, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount must be a number, got %q", raw)
	}
	return amount, nil
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <holder-name> [initial-deposit]",
		Short: "Create a new account",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ledger, _, err := newLedger(ctx)
			if err != nil {
				return err
			}

			initial := decimal.Zero
			if len(args) == 2 {
				initial, err = parseAmount(args[1])
				if err != nil {
					return err
				}
			}

			account, err := ledger.CreateAccount(ctx, args[0], initial)
			if err != nil {
				return err
			}

			fmt.Println("Account created.")
			printAccountInfo(account)
			return nil
		},
	}
}

func depositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <account-number> <amount>",
		Short: "Deposit money into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ledger, _, err := newLedger(ctx)
			if err != nil {
				return err
			}

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			tx, err := ledger.Deposit(ctx, args[0], amount)
			if err != nil {
				return err
			}

			fmt.Printf("Deposit successful. New balance: %s\n", formatAmount(tx.BalanceAfter))
			return nil
		},
	}
}

func withdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <account-number> <amount>",
		Short: "Withdraw money from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ledger, _, err := newLedger(ctx)
			if err != nil {
				return err
			}

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			tx, err := ledger.Withdraw(ctx, args[0], amount)
			if err != nil {
				return err
			}

			fmt.Printf("Withdrawal successful. New balance: %s\n", formatAmount(tx.BalanceAfter))
			return nil
		},
	}
}

func transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from-account> <to-account> <amount>",
		Short: "Transfer money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if args[0] == args[1] {
				return errors.New("cannot transfer to the same account")
			}

			ledger, _, err := newLedger(ctx)
			if err != nil {
				return err
			}

			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			if err := ledger.Transfer(ctx, args[0], args[1], amount); err != nil {
				return err
			}

			from, err := ledger.FindAccount(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Transfer successful. Your balance: %s\n", formatAmount(from.Balance))
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <account-number>",
		Short: "Show account information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, _, err := newLedger(cmd.Context())
			if err != nil {
				return err
			}

			account, err := ledger.FindAccount(args[0])
			if err != nil {
				return err
			}

			printAccountInfo(account)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <account-number>",
		Short: "Show an account's transaction history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, _, err := newLedger(cmd.Context())
			if err != nil {
				return err
			}

			account, err := ledger.FindAccount(args[0])
			if err != nil {
				return err
			}
			history, err := ledger.History(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Transaction history - %s\n", account.Holder)
			for i, tx := range history {
				sign := ""
				if !tx.Amount.IsNegative() {
					sign = "+"
				}
				fmt.Printf("%3d. %s | %-24s | %s%s | balance: %s\n",
					i+1,
					tx.Date.Format(domain.TimeLayout),
					tx.Kind,
					sign,
					formatAmount(tx.Amount),
					formatAmount(tx.BalanceAfter),
				)
			}
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, _, err := newLedger(cmd.Context())
			if err != nil {
				return err
			}

			accounts := ledger.ListAccounts()
			if len(accounts) == 0 {
				fmt.Println("No accounts registered yet.")
				return nil
			}

			fmt.Printf("%-6s %-12s %-24s %14s\n", "No.", "Account", "Holder", "Balance")
			for i, account := range accounts {
				fmt.Printf("%-6d %-12s %-24s %14s\n", i+1, account.Number, account.Holder, formatAmount(account.Balance))
			}
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <account-number>",
		Short: "Delete a zero-balance account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ledger, _, err := newLedger(ctx)
			if err != nil {
				return err
			}

			if !yes && !confirm(fmt.Sprintf("Delete account %s? (yes/no): ", args[0])) {
				fmt.Println("Deletion cancelled.")
				return nil
			}

			if err := ledger.DeleteAccount(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Account %s deleted.\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}

func printAccountInfo(account *domain.Account) {
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Account number: %s\n", account.Number)
	fmt.Printf("Holder:         %s\n", account.Holder)
	fmt.Printf("Balance:        %s\n", formatAmount(account.Balance))
	fmt.Printf("Created at:     %s\n", account.CreatedAt.Format(domain.TimeLayout))
	fmt.Println(strings.Repeat("=", 40))
}
