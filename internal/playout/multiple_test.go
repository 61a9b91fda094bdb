package playout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipleCount(t *testing.T) {
	start := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	n, err := multipleCount(ptr("3"), 1, start)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = multipleCount(ptr(" 2 - 2 "), 1, start)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for seed := range int64(30) {
		n, err := multipleCount(ptr("2-4"), seed, start)
		require.NoError(t, err)
		assert.True(t, n >= 2 && n <= 4)

		again, err := multipleCount(ptr("2-4"), seed, start)
		require.NoError(t, err)
		assert.Equal(t, n, again, "same seed and start draw the same count")
	}

	for _, bad := range []string{"", "zero", "0", "4-2", "1-x", "-3"} {
		_, err := multipleCount(ptr(bad), 1, start)
		assert.ErrorIs(t, err, ErrInvalidPolicy, "count %q", bad)
	}
	_, err = multipleCount(nil, 1, start)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}
