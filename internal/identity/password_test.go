package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse1")
	require.NoError(t, err)
	require.NotEqual(t, "correct-horse1", hash)

	require.True(t, CheckPassword("correct-horse1", hash))
	require.False(t, CheckPassword("wrong-horse1", hash))
	require.False(t, CheckPassword("correct-horse1", "not-a-hash"))
}
