package domain

import "github.com/shopspring/decimal"

// RegisterRequest is the payload for user self-registration and login.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the issued bearer credential.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreateAccountRequest is the admin payload for provisioning an account.
type CreateAccountRequest struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	FatherName  string `json:"father_name"`
	PhoneNumber string `json:"phone_number"`
}

// CreateUserAccountRequest provisions a user and their account in one call.
type CreateUserAccountRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	IsAdmin     bool   `json:"is_admin"`
	Name        string `json:"name"`
	FatherName  string `json:"father_name"`
	PhoneNumber string `json:"phone_number"`
}

// TransferRequest is the payload for moving money between accounts. Exactly
// one of ToIBAN/ToAddress is needed; when both are present the IBAN wins.
type TransferRequest struct {
	ToIBAN    string          `json:"to_iban"`
	ToAddress string          `json:"to_address"`
	Amount    decimal.Decimal `json:"amount"`
}

// AddBeneficiaryRequest is the payload for saving an address-book entry.
type AddBeneficiaryRequest struct {
	Name    string `json:"name"`
	IBAN    string `json:"iban"`
	Address string `json:"address"`
}

// AddMoneyRequest is the admin payload for crediting an account by IBAN.
type AddMoneyRequest struct {
	IBAN   string          `json:"iban"`
	Amount decimal.Decimal `json:"amount"`
}
