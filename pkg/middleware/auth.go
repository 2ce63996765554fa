// Package middleware provides route protection.
package middleware

import (
	"github.com/amirasaad/pinbank/pkg/config"
	"github.com/amirasaad/pinbank/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JwtProtected verifies the Bearer token and stores the parsed token in the
// request locals under "user".
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil,
				"invalid or expired session token", fiber.StatusUnauthorized)
		},
	})
}
