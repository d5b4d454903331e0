package utils

import (
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPKey represents a generated TOTP enrollment
type TOTPKey struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// GenerateTOTPKey generates a new TOTP key for two-factor enrollment
func GenerateTOTPKey(accountName string) (*TOTPKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Callwork",
		AccountName: accountName,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return &TOTPKey{
		Secret: key.Secret(),
		URL:    key.URL(),
	}, nil
}

// ValidateTOTPCode checks a TOTP code against the stored secret
func ValidateTOTPCode(code, secret string) bool {
	return totp.Validate(code, secret)
}
