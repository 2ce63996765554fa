package auth

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Username       string  `json:"username" validate:"required,min=3,max=50"`
	Pin            string  `json:"pin" validate:"required"`
	InitialDeposit float64 `json:"initial_deposit" validate:"gte=0"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Pin      string `json:"pin" validate:"required"`
}
