package sourcemap

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

func TestPrepareByOrigin(t *testing.T) {
	raw, err := Encode(sampleTable())
	require.NoError(t, err)

	zipped, err := Compress(raw)
	require.NoError(t, err)
	got, err := Prepare(zipped, OriginRegistry)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	hexed := hexutil.Encode(raw)
	got, err = Prepare([]byte(hexed), OriginRemote)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	got, err = Prepare([]byte(hexed[2:]), OriginRemote)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	got, err = Prepare(raw, OriginRaw)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestPrepareDoesNotSniff(t *testing.T) {
	raw, err := Encode(sampleTable())
	require.NoError(t, err)

	// plain bytes declared as registry output are not gzip
	_, err = Prepare(raw, OriginRegistry)
	require.ErrorIs(t, err, ErrDecode)

	_, err = Prepare([]byte("0xzz"), OriginRemote)
	require.ErrorIs(t, err, ErrDecode)

	_, err = Prepare(raw, Origin(42))
	require.ErrorIs(t, err, ErrDecode)
}

func TestPrepareSource(t *testing.T) {
	src := "module 0x1::coin {\n}\n"
	zipped, err := Compress([]byte(src))
	require.NoError(t, err)

	got, err := PrepareSource(zipped, OriginRegistry)
	require.NoError(t, err)
	require.Equal(t, src, got)

	got, err = PrepareSource([]byte(src), OriginRemote)
	require.NoError(t, err)
	require.Equal(t, src, got)
}
