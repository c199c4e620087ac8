package escalation

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"camshare/internal/logger"
)

// CodeLength is the number of digits in a one-time code.
const CodeLength = 4

// CodeGenerator produces the one-time code for a challenge.
type CodeGenerator func() (string, error)

// RandomCode returns a uniformly random numeric code.
func RandomCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// FixedCode always yields code. Meant for demos and tests.
func FixedCode(code string) CodeGenerator {
	return func() (string, error) { return code, nil }
}

// Sender delivers a code out of band.
type Sender interface {
	Send(ctx context.Context, sessionID, code string) error
}

// LogSender simulates delivery by logging the code.
type LogSender struct {
	Logger *logger.Logger
}

func (s LogSender) Send(_ context.Context, sessionID, code string) error {
	s.Logger.Info("One-time code for escalation %s: %s", sessionID, code)
	return nil
}
