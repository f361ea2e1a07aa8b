package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// OTPHasher hashes one-time codes with its own pepper, keyed HMAC-SHA256.
// Unlike password hashes the output is deterministic: the hash doubles as a
// cache-key component, so recomputing it from email+otp must land on the same
// entry. A distinct pepper keeps OTP hashes and password hashes
// non-interchangeable even if one pepper leaks.
type OTPHasher struct {
	pepper []byte
}

func NewOTPHasher(pepper string) *OTPHasher {
	return &OTPHasher{pepper: []byte(pepper)}
}

// Hash returns the base64url HMAC-SHA256 of data under the OTP pepper.
func (h *OTPHasher) Hash(data string) (string, error) {
	if data == "" {
		return "", ErrEmptyInput
	}
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Verify reports whether hash matches data, in constant time.
func (h *OTPHasher) Verify(hash, data string) error {
	expected, err := h.Hash(data)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return ErrMismatch
	}
	return nil
}
