package soidc

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	"go.pilab.hu/shadow-oidc/parameter"
)

// SecureByteLength is the number of random bytes behind codes and subjects.
const SecureByteLength = 20

// RandomGenerator produces codes and subjects from a shared entropy source.
// Reads are serialized, so any io.Reader can back it.
type RandomGenerator struct {
	mu  sync.Mutex
	src io.Reader
}

// NewRandomGenerator wraps src. A nil src uses crypto/rand.
func NewRandomGenerator(src io.Reader) *RandomGenerator {
	if src == nil {
		src = rand.Reader
	}
	return &RandomGenerator{src: src}
}

// Bytes reads n bytes from the source.
func (g *RandomGenerator) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)

	g.mu.Lock()
	_, err := io.ReadFull(g.src, buf)
	g.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}

	return buf, nil
}

// SecureString returns SecureByteLength random bytes as unpadded base64url.
func (g *RandomGenerator) SecureString() (string, error) {
	buf, err := g.Bytes(SecureByteLength)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (g *RandomGenerator) Code() (parameter.Code, error) {
	s, err := g.SecureString()
	if err != nil {
		return "", err
	}
	return parameter.ParseCode(s)
}

func (g *RandomGenerator) Subject() (parameter.Subject, error) {
	s, err := g.SecureString()
	if err != nil {
		return "", err
	}
	return parameter.ParseSubject(s)
}
