package config

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

const (
	secretKeyLength = 50
	secretKeyChars  = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*(-_=+)"
)

// RandomSecretKey returns a 50 character key suitable for SECRET_KEY.
func RandomSecretKey() (string, error) {
	limit := big.NewInt(int64(len(secretKeyChars)))
	buf := make([]byte, secretKeyLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", errors.Wrap(err, "generating secret key")
		}
		buf[i] = secretKeyChars[n.Int64()]
	}
	return string(buf), nil
}
