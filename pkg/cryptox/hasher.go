// Package cryptox implements the credential hashing primitives: peppered
// Argon2id password and OTP hashing, one-time code generation, and token
// fingerprinting.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	// ErrEmptyInput reports a hash or verify call with an empty plaintext.
	ErrEmptyInput = errors.New("cryptox: empty input")

	// ErrMismatch reports a failed verification.
	ErrMismatch = errors.New("cryptox: value does not match hash")
)

// Hasher hashes values with a server-side pepper appended before Argon2id.
// The password subsystem and the OTP subsystem each get their own Hasher with
// a distinct pepper so their hashes are not interchangeable.
type Hasher struct {
	pepper string
}

func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

// Hash generates a PHC-format Argon2id hash of plain+pepper with a fresh
// random salt. Output differs between calls; verification is deterministic.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyInput
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	sum := argon2.IDKey([]byte(plain+h.pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify compares plain against a PHC-format Argon2id hash in constant time.
// It returns ErrMismatch when the value does not match and ErrEmptyInput when
// plain is empty.
func (h *Hasher) Verify(plain, encodedHash string) error {
	if plain == "" {
		return ErrEmptyInput
	}

	mem, iters, par, salt, expected, err := decodePHC(encodedHash)
	if err != nil {
		return err
	}

	computed := argon2.IDKey(
		[]byte(plain+h.pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - hash lengths are bounded by keyLength
	)

	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return ErrMismatch
	}
	return nil
}

// decodePHC parses "$argon2id$v=19$m=X,t=Y,p=Z$salt$hash".
func decodePHC(encoded string) (mem, iters uint32, par uint8, salt, hash []byte, err error) {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(encoded) {
		if encoded[i] == '$' {
			parts = append(parts, encoded[start:i])
			start = i + 1
		}
	}
	parts = append(parts, encoded[start:])

	if len(parts) != 6 {
		return 0, 0, 0, nil, nil, errors.New("cryptox: invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errors.New("cryptox: invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return 0, 0, 0, nil, nil, errors.New("cryptox: invalid hash format: wrong version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("cryptox: invalid hash parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("cryptox: invalid salt encoding: %w", err)
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("cryptox: invalid hash encoding: %w", err)
	}

	return mem, iters, par, salt, hash, nil
}
