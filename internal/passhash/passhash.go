// Package passhash hashes and verifies passwords with argon2id.
// The encoded form carries the algorithm identifier, the argon2 parameters,
// the per-record salt and the derived key in a single string, so the
// parameters can be changed later without invalidating stored digests.
package passhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params holds the argon2id cost parameters.
type Params struct {
	TimeCost    uint32
	MemoryCost  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultParams is the cost profile used for newly created digests.
var DefaultParams = Params{
	TimeCost:    3,
	MemoryCost:  64 * 1024,
	Parallelism: 4,
	KeyLength:   32,
	SaltLength:  16,
}

// ErrMalformedDigest is returned when an encoded digest cannot be parsed.
var ErrMalformedDigest = errors.New("malformed password digest")

func generateSalt(length uint32) ([]byte, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Hash derives an argon2id key from the password with a fresh random salt
// and returns the encoded digest string.
func Hash(password string) (string, error) {
	return hashWithParams(password, DefaultParams)
}

func hashWithParams(password string, params Params) (string, error) {
	salt, err := generateSalt(params.SaltLength)
	if err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		params.TimeCost,
		params.MemoryCost,
		params.Parallelism,
		params.KeyLength,
	)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		params.MemoryCost,
		params.TimeCost,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

func decodeDigest(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, ErrMalformedDigest
	}
	if version != argon2.Version {
		return Params{}, nil, nil, ErrMalformedDigest
	}

	params := Params{}
	_, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.MemoryCost,
		&params.TimeCost,
		&params.Parallelism,
	)
	if err != nil {
		return Params{}, nil, nil, ErrMalformedDigest
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedDigest
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedDigest
	}

	params.KeyLength = uint32(len(key))
	params.SaltLength = uint32(len(salt))

	return params, salt, key, nil
}

// Verify reports whether the password matches the encoded digest.
// The comparison is constant-time.
func Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decodeDigest(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey(
		[]byte(password),
		salt,
		params.TimeCost,
		params.MemoryCost,
		params.Parallelism,
		params.KeyLength,
	)

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}
