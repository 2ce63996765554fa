// Package auth exposes registration and login over HTTP.
package auth

import (
	authsvc "github.com/amirasaad/pinbank/pkg/service/auth"
	"github.com/amirasaad/pinbank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the public authentication endpoints.
//
//   - POST /auth/register : create an account with a PIN and optional
//     initial deposit.
//   - POST /auth/login    : verify the PIN and issue a session token.
func Routes(app *fiber.App, authSvc *authsvc.Service) {
	app.Post("/auth/register", Register(authSvc))
	app.Post("/auth/login", Login(authSvc))
}

// Register returns a Fiber handler that creates a new account and responds
// with its generated account number.
func Register(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterRequest](c)
		if err != nil {
			return nil // problem response already written
		}
		a, err := authSvc.Register(c.Context(), input.Username, input.Pin, input.InitialDeposit)
		if err != nil {
			log.Errorf("Failed to register: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to register", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User registered successfully", fiber.Map{
			"account_number": a.Number,
			"balance":        a.Balance.Float(),
		})
	}
}

// Login returns a Fiber handler that verifies the PIN and responds with a
// session token, the profile, and recent transaction history.
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginRequest](c)
		if err != nil {
			return nil // problem response already written
		}
		res, err := authSvc.Login(c.Context(), input.Username, input.Pin)
		if err != nil {
			log.Errorf("Failed to login: %v", err)
			return common.ProblemDetailsJSON(c, "Login failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Login successful", fiber.Map{
			"token":          res.Token,
			"account_number": res.AccountNumber,
			"balance":        res.Balance.Float(),
			"history":        common.ToTransactionDTOs(res.History),
		})
	}
}
