// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateReferenceCode returns an opaque code for compliance justification
// rows so auditors can cite an override without exposing row ids.
func GenerateReferenceCode() (string, error) {
	randomPart, err := GenerateRandomString(16)
	if err != nil {
		return "", err
	}
	return "CJ-" + randomPart, nil
}
