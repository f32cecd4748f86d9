package codes

import (
	"context"
	"crypto/rand"
	"fmt"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces uppercase alphanumeric join codes from crypto/rand.
type Generator struct{}

func NewGenerator() Generator {
	return Generator{}
}

func (Generator) NewCode(_ context.Context, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("poll code length must be positive, got %d", length)
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
