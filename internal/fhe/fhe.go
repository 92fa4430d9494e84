// Package fhe implements the placeholder "FHE" transform used for dietary codes.
//
// Values are not encrypted. A number is rendered in decimal, base64-wrapped and
// tagged with a prefix so stored blobs look like ciphertext. Compute decodes,
// applies a fixed linear operation and re-encodes.
package fhe

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Prefix marks an encoded value.
const Prefix = "FHE-"

// Operation is a linear transform applied by Compute.
type Operation string

const (
	OpIncrease10 Operation = "increase10%"
	OpDecrease10 Operation = "decrease10%"
	OpDouble     Operation = "double"
)

// ErrMalformed is returned when a value cannot be decoded.
var ErrMalformed = errors.New("malformed encrypted value")

// EncryptNumber wraps value as Prefix + base64(decimal(value)).
func EncryptNumber(value float64) string {
	return Prefix + base64.StdEncoding.EncodeToString([]byte(strconv.FormatFloat(value, 'f', -1, 64)))
}

// DecryptNumber reverses EncryptNumber. Input without the prefix is parsed as a plain number.
func DecryptNumber(encrypted string) (float64, error) {
	raw := strings.TrimSpace(encrypted)
	if strings.HasPrefix(raw, Prefix) {
		decoded, err := base64.StdEncoding.DecodeString(raw[len(Prefix):])
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		raw = string(decoded)
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return value, nil
}

// Apply runs op on a plain value. Unknown operations return the value unchanged.
func Apply(value float64, op Operation) float64 {
	switch op {
	case OpIncrease10:
		return value * 1.1
	case OpDecrease10:
		return value * 0.9
	case OpDouble:
		return value * 2
	default:
		return value
	}
}

// Compute decodes encrypted, applies op and encodes the result.
func Compute(encrypted string, op Operation) (string, error) {
	value, err := DecryptNumber(encrypted)
	if err != nil {
		return "", err
	}
	return EncryptNumber(Apply(value, op)), nil
}
