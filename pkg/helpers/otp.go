package helpers

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// GenOTPCode returns a numeric code of the given length drawn from
// crypto/rand. Leading zeros are kept.
func GenOTPCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("otp length must be positive")
	}
	var sb strings.Builder
	sb.Grow(length)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// GenState returns a random URL-safe token for OAuth state cookies.
func GenState() (string, error) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b), nil
}
