// Operator CLI for working with accounts directly against the configured
// database, bypassing the HTTP layer.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/amirasaad/pinbank/infra/initializer"
	"github.com/amirasaad/pinbank/pkg/config"
	"github.com/amirasaad/pinbank/pkg/locking"
	"github.com/amirasaad/pinbank/pkg/money"
	authsvc "github.com/amirasaad/pinbank/pkg/service/auth"
	"github.com/amirasaad/pinbank/pkg/service/engine"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.Load(".env")
	if err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		color.Red("Failed to initialize: %v", err)
		os.Exit(1)
	}

	locks := locking.NewRegistry()
	auth := authsvc.New(deps.Uow, cfg.Jwt, cfg.Bank, deps.Logger, authsvc.WithLockRegistry(locks))
	eng := engine.New(deps.Uow, cfg.Bank, deps.Logger, engine.WithLockRegistry(locks))
	ctx := context.Background()

	switch os.Args[1] {
	case "register":
		if len(os.Args) < 3 {
			usage()
			return
		}
		initial := 0.0
		if len(os.Args) > 3 {
			initial = parseAmount(os.Args[3])
		}
		pin := readPIN("Choose a PIN: ")
		a, err := auth.Register(ctx, os.Args[2], pin, initial)
		if err != nil {
			color.Red("Registration failed: %v", err)
			os.Exit(1)
		}
		color.Green("Registered %s with account number %s (balance %s)", a.Username, a.Number, a.Balance)
	case "deposit":
		receiptOp(eng.Deposit, os.Args)
	case "withdraw":
		receiptOp(eng.Withdraw, os.Args)
	case "transfer":
		if len(os.Args) < 5 {
			usage()
			return
		}
		amount := mustMoney(os.Args[4])
		pin := readPIN("PIN: ")
		receipt, err := eng.Transfer(ctx, mustID(os.Args[2]), os.Args[3], amount, pin)
		if err != nil {
			color.Red("Transfer failed: %v", err)
			os.Exit(1)
		}
		color.Green("Transferred %s to %s (fee %s). New balance: %s",
			amount, os.Args[3], receipt.Transaction.Fee, receipt.NewBalance)
	case "balance":
		if len(os.Args) < 3 {
			usage()
			return
		}
		view, err := eng.GetBalance(ctx, mustID(os.Args[2]))
		if err != nil {
			color.Red("Balance lookup failed: %v", err)
			os.Exit(1)
		}
		color.Green("%s: %s", view.AccountNumber, view.Balance)
	case "statement":
		if len(os.Args) < 3 {
			usage()
			return
		}
		txs, err := eng.GetStatement(ctx, mustID(os.Args[2]), 0)
		if err != nil {
			color.Red("Statement lookup failed: %v", err)
			os.Exit(1)
		}
		for _, tx := range txs {
			fmt.Printf("%s  %-10s  %10s  balance %10s\n",
				tx.CreatedAt.Format("2006-01-02 15:04:05"), tx.Type, tx.Amount, tx.BalanceAfter)
		}
	default:
		usage()
	}
}

type op func(ctx context.Context, id uuid.UUID, amount money.Money, pin string) (*engine.Receipt, error)

func receiptOp(fn op, args []string) {
	if len(args) < 4 {
		usage()
		return
	}
	amount := mustMoney(args[3])
	pin := readPIN("PIN: ")
	receipt, err := fn(context.Background(), mustID(args[2]), amount, pin)
	if err != nil {
		color.Red("Operation failed: %v", err)
		os.Exit(1)
	}
	color.Green("Done. New balance: %s", receipt.NewBalance)
}

func readPIN(prompt string) string {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		color.Red("Could not read PIN: %v", err)
		os.Exit(1)
	}
	return string(raw)
}

func mustID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		color.Red("Invalid account ID: %v", err)
		os.Exit(1)
	}
	return id
}

func parseAmount(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		color.Red("Invalid amount: %v", err)
		os.Exit(1)
	}
	return f
}

func mustMoney(s string) money.Money {
	m, err := money.New(parseAmount(s))
	if err != nil {
		color.Red("Invalid amount: %v", err)
		os.Exit(1)
	}
	return m
}

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  register <username> [initial_deposit]")
	fmt.Println("  deposit <account_id> <amount>")
	fmt.Println("  withdraw <account_id> <amount>")
	fmt.Println("  transfer <account_id> <recipient_number> <amount>")
	fmt.Println("  balance <account_id>")
	fmt.Println("  statement <account_id>")
}
