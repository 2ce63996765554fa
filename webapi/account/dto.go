package account

// DepositRequest is the payload for POST /account/deposit.
type DepositRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Pin    string  `json:"pin" validate:"required"`
}

// WithdrawRequest is the payload for POST /account/withdraw.
type WithdrawRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Pin    string  `json:"pin" validate:"required"`
}

// TransferRequest is the payload for POST /account/transfer.
type TransferRequest struct {
	RecipientAccount string  `json:"recipient_account" validate:"required"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	Pin              string  `json:"pin" validate:"required"`
}
