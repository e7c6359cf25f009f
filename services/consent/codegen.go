package consent

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateConsentCode produces a 6-digit code drawn uniformly from
// [100000, 999999], so codes never carry a leading zero. crypto/rand keeps
// the codes unpredictable.
func GenerateConsentCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate consent code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
