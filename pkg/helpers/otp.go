package helpers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// GenRecoveryCode generates a secure random 6-digit recovery code as a zero-padded string
func GenRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenToken returns n random bytes encoded for use in URLs.
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
