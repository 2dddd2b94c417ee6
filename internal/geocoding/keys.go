package geocoding

import (
	"errors"
	"sync"
)

// ErrNoKeys is returned when a key ring is built without any key.
var ErrNoKeys = errors.New("at least one API key is required")

// KeyRing hands out API keys round-robin. All callers share one rotation index, so
// consecutive lookups spread over the pool no matter who issues them.
type KeyRing struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyRing creates a key ring that starts rotating at index start.
func NewKeyRing(keys []string, start int) (*KeyRing, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	if start < 0 {
		start = 0
	}

	return &KeyRing{keys: append([]string(nil), keys...), next: start % len(keys)}, nil
}

// Next returns the key to use for the upcoming request and advances the rotation.
func (kr *KeyRing) Next() string {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	key := kr.keys[kr.next]
	kr.next = (kr.next + 1) % len(kr.keys)

	return key
}

// Len returns the size of the key pool.
func (kr *KeyRing) Len() int {
	return len(kr.keys)
}
