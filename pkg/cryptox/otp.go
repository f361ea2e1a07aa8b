package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTP bounds: six decimal digits, never starting with zero.
const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a uniformly random six-digit one-time code.
func GenerateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return 0, fmt.Errorf("cryptox: failed to generate otp: %w", err)
	}
	return otpMin + int(n.Int64()), nil
}
