package uuid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()
	first, err := gen.NewID()
	require.NoError(t, err)
	require.Len(t, first, 36)

	second, err := gen.NewID()
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
