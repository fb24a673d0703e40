package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// VerificationCodeLength is the number of digits in an email verification code.
const VerificationCodeLength = 8

func GenerateNumericOTP(n int) (string, error) {
	if n <= 0 {
		n = VerificationCodeLength
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	num, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	format := fmt.Sprintf("%%0%dd", n)
	return fmt.Sprintf(format, num), nil
}
