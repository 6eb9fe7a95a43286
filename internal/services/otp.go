package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Verification codes expire one hour after issue. Re-registering an
// unverified email reissues the code and resets the expiry.
const verifyCodeTTL = time.Hour

// newVerifyCode generates a random 6-digit verification code.
func newVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
