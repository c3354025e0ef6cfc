package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	for in, want := range map[string]string{
		"0x1":       "0x1",
		"1":         "0x1",
		"0x0000000000000000000000000000000000000000000000000000000000000001": "0x1",
		"0xa550c18": "0x" + strings.Repeat("0", 57) + "a550c18",
	} {
		got, err := NormalizeAddress(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := NormalizeAddress("0xzz")
	require.Error(t, err)
}
