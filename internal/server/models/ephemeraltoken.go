package models

// TokenPurpose discriminates what an ephemeral token may be redeemed for.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify-email"
	PurposeResetPassword TokenPurpose = "reset-password"
)

// EphemeralToken is the value stored under a random single-use key.
type EphemeralToken struct {
	Purpose TokenPurpose
	UserID  string
	Email   string
}
