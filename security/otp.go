package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpDigits = 6

// MakeOTPCode returns a fixed-length numeric passcode drawn from a
// cryptographically secure source. Leading zeros are kept.
func MakeOTPCode() (string, error) {
	max := big.NewInt(1)
	for range otpDigits {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", otpDigits, n), nil
}
