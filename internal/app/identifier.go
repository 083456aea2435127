/**
 * @description
 * Generation of the two account identifiers: the bank-style IBAN
 * ("AB" + 12 digits, 14 characters) and the crypto-style address
 * ("CR" + 32 uppercase alphanumerics, 34 characters). Randomness comes from
 * crypto/rand; the account-creation path retries on a unique-constraint
 * collision rather than trusting the odds.
 */
package app

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	ibanPrefix    = "AB"
	ibanDigits    = 12
	addressPrefix = "CR"
	addressLength = 32
	addressChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random index: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// GenerateIBAN returns a fresh 14-character IBAN.
func GenerateIBAN() (string, error) {
	digits, err := randomString("0123456789", ibanDigits)
	if err != nil {
		return "", err
	}
	return ibanPrefix + digits, nil
}

// GenerateAddress returns a fresh 34-character crypto address.
func GenerateAddress() (string, error) {
	body, err := randomString(addressChars, addressLength)
	if err != nil {
		return "", err
	}
	return addressPrefix + body, nil
}
