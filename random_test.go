package soidc

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestRandomGenerator_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x01}, SecureByteLength*2)
	gen := NewRandomGenerator(bytes.NewReader(seed))

	code, err := gen.Code()
	require.NoError(t, err)
	assert.Equal(t, "AQEBAQEBAQEBAQEBAQEBAQEBAQE", code.String())

	subject, err := gen.Subject()
	require.NoError(t, err)
	assert.Equal(t, code.String(), subject.String())

	_, err = gen.Code()
	assert.Error(t, err)
}

func TestRandomGenerator_Failure(t *testing.T) {
	gen := NewRandomGenerator(failingReader{})

	_, err := gen.SecureString()
	assert.ErrorContains(t, err, "entropy exhausted")
}

func TestRandomGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewRandomGenerator(nil)

	const n = 256
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := gen.Code()
			if !assert.NoError(t, err) {
				return
			}
			assert.Len(t, code.String(), 27)

			mu.Lock()
			seen[code.String()] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}
