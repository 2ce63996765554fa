// Package account exposes the transaction engine's operations over HTTP.
// Every route resolves the authenticated account from the verified session
// token and passes its identity explicitly to the engine.
package account

import (
	"strconv"

	"github.com/amirasaad/pinbank/pkg/config"
	"github.com/amirasaad/pinbank/pkg/domain"
	"github.com/amirasaad/pinbank/pkg/middleware"
	"github.com/amirasaad/pinbank/pkg/money"
	authsvc "github.com/amirasaad/pinbank/pkg/service/auth"
	"github.com/amirasaad/pinbank/pkg/service/engine"
	"github.com/amirasaad/pinbank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Routes registers the token-protected account operations.
//
//   - POST /account/deposit   : add funds to the authenticated account.
//   - POST /account/withdraw  : remove funds from the authenticated account.
//   - POST /account/transfer  : move funds to another account by number.
//   - GET  /account/balance   : current balance and account number.
//   - GET  /account/statement : ledger entries, most recent first.
func Routes(app *fiber.App, eng *engine.Engine, authSvc *authsvc.Service, cfg *config.App) {
	app.Post("/account/deposit", middleware.JwtProtected(cfg.Jwt), Deposit(eng, authSvc))
	app.Post("/account/withdraw", middleware.JwtProtected(cfg.Jwt), Withdraw(eng, authSvc))
	app.Post("/account/transfer", middleware.JwtProtected(cfg.Jwt), Transfer(eng, authSvc))
	app.Get("/account/balance", middleware.JwtProtected(cfg.Jwt), GetBalance(eng, authSvc))
	app.Get("/account/statement", middleware.JwtProtected(cfg.Jwt), GetStatement(eng, authSvc))
}

func currentAccountID(c *fiber.Ctx, authSvc *authsvc.Service) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return authSvc.CurrentAccountID(token)
}

// Deposit returns a Fiber handler that credits the authenticated account.
func Deposit(eng *engine.Engine, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := currentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if err != nil {
			return nil // problem response already written
		}
		amount, err := money.New(input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}
		receipt, err := eng.Deposit(c.Context(), accountID, amount, input.Pin)
		if err != nil {
			log.Errorf("Failed to deposit: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to deposit", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deposit successful", fiber.Map{
			"balance":     receipt.NewBalance.Float(),
			"transaction": common.ToTransactionDTO(receipt.Transaction),
		})
	}
}

// Withdraw returns a Fiber handler that debits the authenticated account.
func Withdraw(eng *engine.Engine, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := currentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[WithdrawRequest](c)
		if err != nil {
			return nil // problem response already written
		}
		amount, err := money.New(input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}
		receipt, err := eng.Withdraw(c.Context(), accountID, amount, input.Pin)
		if err != nil {
			log.Errorf("Failed to withdraw: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to withdraw", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal successful", fiber.Map{
			"balance":     receipt.NewBalance.Float(),
			"transaction": common.ToTransactionDTO(receipt.Transaction),
		})
	}
}

// Transfer returns a Fiber handler that moves funds from the authenticated
// account to the recipient account number.
func Transfer(eng *engine.Engine, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := currentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if err != nil {
			return nil // problem response already written
		}
		amount, err := money.New(input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}
		receipt, err := eng.Transfer(c.Context(), accountID, input.RecipientAccount, amount, input.Pin)
		if err != nil {
			log.Errorf("Failed to transfer: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", fiber.Map{
			"balance":     receipt.NewBalance.Float(),
			"transaction": common.ToTransactionDTO(receipt.Transaction),
		})
	}
}

// GetBalance returns a Fiber handler for the balance inquiry.
func GetBalance(eng *engine.Engine, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := currentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		view, err := eng.GetBalance(c.Context(), accountID)
		if err != nil {
			log.Errorf("Failed to fetch balance: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to fetch balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", fiber.Map{
			"account_number": view.AccountNumber,
			"balance":        view.Balance.Float(),
		})
	}
}

// GetStatement returns a Fiber handler listing the account's ledger,
// most-recent-first. An optional limit query parameter caps the result.
func GetStatement(eng *engine.Engine, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := currentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				return common.ProblemDetailsJSON(c, "Invalid limit", nil,
					"limit must be a non-negative integer", fiber.StatusBadRequest)
			}
		}
		txs, err := eng.GetStatement(c.Context(), accountID, limit)
		if err != nil {
			log.Errorf("Failed to fetch statement: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to fetch statement", err)
		}
		if len(txs) == 0 {
			return common.ProblemDetailsJSON(c, "No transactions found", domain.ErrNotFound)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Statement fetched", fiber.Map{
			"transactions": common.ToTransactionDTOs(txs),
		})
	}
}
