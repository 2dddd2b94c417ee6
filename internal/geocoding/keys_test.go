package geocoding_test

import (
	"testing"

	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRing_Rotation(t *testing.T) {
	t.Parallel()
	pool := []string{"key-a", "key-b", "key-c"}

	for start := range pool {
		ring, err := geocoding.NewKeyRing(pool, start)
		require.NoError(t, err)

		for i := range 10 {
			assert.Equal(t, pool[(start+i)%len(pool)], ring.Next(), "start %d call %d", start, i)
		}
	}
}

func TestKeyRing_StartOutOfRange(t *testing.T) {
	t.Parallel()

	ring, err := geocoding.NewKeyRing([]string{"a", "b"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "b", ring.Next())
	assert.Equal(t, "a", ring.Next())
	assert.Equal(t, 2, ring.Len())
}

func TestKeyRing_Empty(t *testing.T) {
	t.Parallel()

	ring, err := geocoding.NewKeyRing(nil, 0)
	require.ErrorIs(t, err, geocoding.ErrNoKeys)
	assert.Nil(t, ring)
}
