package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	encerrors "github.com/yourusername/encdec/pkg/errors"
)

func TestGetStage(t *testing.T) {
	for _, name := range []string{"gzip", "base64", "identity"} {
		stage, err := GetStage(name)
		require.NoError(t, err)
		assert.Equal(t, name, stage.Name())
	}

	_, err := GetStage("zstd")
	assert.Error(t, err)
}

func TestChainName(t *testing.T) {
	assert.Equal(t, "gzip+base64", NewChain(NewGzipStage(nil), NewBase64Stage()).Name())
	assert.Equal(t, "identity", NewChain().Name())
}

func TestChainRoundTrip(t *testing.T) {
	chain := NewChain(NewGzipStage(nil), NewBase64Stage())
	raw := []byte("stages compose: compress, then encode")

	encoded, err := chain.Apply(raw)
	require.NoError(t, err)
	assert.Equal(t, "H4sI", string(encoded[:4]))

	decoded, err := chain.Reverse(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestChainReverseStopsAtFirstError(t *testing.T) {
	chain := NewChain(NewGzipStage(nil), NewBase64Stage())

	_, err := chain.Reverse([]byte("a==="))
	require.Error(t, err)
	assert.Equal(t, encerrors.KindMalformedTransportInput, encerrors.KindOf(err))

	// Valid base64 of bytes that are not gzip.
	_, err = chain.Reverse([]byte("aGVsbG8="))
	require.Error(t, err)
	assert.Equal(t, encerrors.KindInvalidStreamHeader, encerrors.KindOf(err))
}

func TestIdentityStage(t *testing.T) {
	stage := NewIdentityStage()
	out, err := stage.Apply([]byte{0xff, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x00}, out)

	out, err = stage.Reverse(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x00}, out)
}
