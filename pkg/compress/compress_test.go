package compress

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	encerrors "github.com/yourusername/encdec/pkg/errors"
)

var gzipHeader = []byte{0x1f, 0x8b, 0x08, 0, 0, 0, 0, 0, 0, 0xff}

func mustCompress(t *testing.T, raw []byte) []byte {
	t.Helper()
	out, err := Compress(raw)
	require.NoError(t, err)
	return out
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inputs := [][]byte{
		{},
		[]byte("hello"),
		[]byte(strings.Repeat("encode/decode ", 1000)),
	}
	random := make([]byte, 64*1024)
	rng.Read(random)
	inputs = append(inputs, random)

	for _, raw := range inputs {
		compressed := mustCompress(t, raw)
		got, err := Decompress(compressed)
		require.NoError(t, err)
		require.True(t, bytes.Equal(raw, got), "round trip mismatch for %d bytes", len(raw))
	}
}

func TestRoundTripAllLevels(t *testing.T) {
	raw := []byte(strings.Repeat("<CEBD><Quality>127</Quality></CEBD>\r\n", 200))
	for _, level := range []int{HuffmanOnly, DefaultCompression, NoCompression, BestSpeed, 5, BestCompression} {
		c, err := New(WithLevel(level))
		require.NoError(t, err)
		assert.Equal(t, level, c.Level())

		compressed, err := c.Compress(raw)
		require.NoError(t, err)
		got, err := c.Decompress(compressed)
		require.NoError(t, err, "level %d", level)
		assert.Equal(t, raw, got)
	}
}

func TestCompressEmptyProducesMinimalStream(t *testing.T) {
	out := mustCompress(t, nil)

	require.GreaterOrEqual(t, len(out), 18)
	assert.Equal(t, []byte{0x1f, 0x8b, 0x08}, out[:3])
	// CRC32 of nothing is zero, and so is the length.
	assert.Equal(t, make([]byte, 8), out[len(out)-8:])

	got, err := Decompress(out)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	_, err := New(WithLevel(42))
	assert.Error(t, err)

	_, err = New(WithMaxDecompressedBytes(-1))
	assert.Error(t, err)
}

func TestDecompressInvalidHeader(t *testing.T) {
	for _, data := range [][]byte{
		[]byte("hello world, not gzip"),
		{0x1f},
		{0x1f, 0x00},
		{0x1f, 0x8b, 0x07, 0, 0, 0, 0, 0, 0, 0xff, 0x03, 0x00},
	} {
		if len(data) == 1 {
			// A lone magic byte is a truncated header, not a wrong one.
			_, err := Decompress(data)
			assert.Equal(t, encerrors.KindTruncatedStream, encerrors.KindOf(err))
			continue
		}
		_, err := Decompress(data)
		require.Error(t, err)
		assert.Equal(t, encerrors.KindInvalidStreamHeader, encerrors.KindOf(err), "%x", data)
	}
}

func TestDecompressTruncated(t *testing.T) {
	compressed := mustCompress(t, []byte(strings.Repeat("truncate me ", 100)))

	for _, cut := range []int{0, 2, 5, 9, 12, len(compressed) - 6, len(compressed) - 1} {
		_, err := Decompress(compressed[:cut])
		require.Error(t, err, "cut at %d", cut)
		assert.Equal(t, encerrors.KindTruncatedStream, encerrors.KindOf(err), "cut at %d", cut)
	}
}

func TestDecompressChecksumMismatch(t *testing.T) {
	compressed := mustCompress(t, []byte("checksum sensitive payload"))

	for _, offset := range []int{len(compressed) - 8, len(compressed) - 5, len(compressed) - 4, len(compressed) - 1} {
		tampered := append([]byte(nil), compressed...)
		tampered[offset] ^= 0x01

		_, err := Decompress(tampered)
		require.Error(t, err)
		assert.Equal(t, encerrors.KindChecksumMismatch, encerrors.KindOf(err), "offset %d", offset)
		assert.ErrorIs(t, err, encerrors.ErrChecksumMismatch)
	}
}

func TestDecompressCorruptBlock(t *testing.T) {
	// BFINAL=1, BTYPE=11 is a reserved block type.
	reserved := append(append([]byte(nil), gzipHeader...), 0x07)
	reserved = append(reserved, make([]byte, 8)...)

	// Stored block whose NLEN is not the complement of LEN.
	stored := append(append([]byte(nil), gzipHeader...), 0x01, 0x05, 0x00, 0x00, 0x00)
	stored = append(stored, []byte("hello")...)
	stored = append(stored, make([]byte, 8)...)

	for name, data := range map[string][]byte{"reserved": reserved, "stored": stored} {
		_, err := Decompress(data)
		require.Error(t, err, name)
		assert.Equal(t, encerrors.KindCorruptBlock, encerrors.KindOf(err), name)
	}
}

func TestBitFlipsNeverReturnWrongData(t *testing.T) {
	raw := []byte("The Encode/Decode App flips bits so you don't have to.")
	compressed := mustCompress(t, raw)

	// Header bytes 4..9 (mtime, flags, OS) do not change the payload.
	for i := len(gzipHeader); i < len(compressed); i++ {
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte(nil), compressed...)
			tampered[i] ^= 1 << bit

			got, err := Decompress(tampered)
			if err != nil {
				assert.True(t, encerrors.IsStreamError(err), "byte %d bit %d: %v", i, bit, err)
				continue
			}
			assert.Equal(t, raw, got, "byte %d bit %d returned wrong data", i, bit)
		}
	}
}

func TestDecompressConcatenatedMembers(t *testing.T) {
	first := mustCompress(t, []byte("first "))
	second := mustCompress(t, []byte("second"))

	got, err := Decompress(append(first, second...))
	require.NoError(t, err)
	assert.Equal(t, "first second", string(got))
}

func TestDecompressTrailingGarbage(t *testing.T) {
	compressed := mustCompress(t, []byte("payload"))
	data := append(compressed, []byte("garbage!!!")...)

	_, err := Decompress(data)
	require.Error(t, err)
	assert.Equal(t, encerrors.KindInvalidStreamHeader, encerrors.KindOf(err))

	single, err := New(WithMultistream(false))
	require.NoError(t, err)
	got, err := single.Decompress(data)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestDecompressLimit(t *testing.T) {
	raw := bytes.Repeat([]byte{'a'}, 10000)
	compressed := mustCompress(t, raw)

	limited, err := New(WithMaxDecompressedBytes(1000))
	require.NoError(t, err)
	_, err = limited.Decompress(compressed)
	require.Error(t, err)
	assert.Equal(t, encerrors.KindCorruptBlock, encerrors.KindOf(err))
	assert.Contains(t, err.Error(), "limit")

	exact, err := New(WithMaxDecompressedBytes(int64(len(raw))))
	require.NoError(t, err)
	got, err := exact.Decompress(compressed)
	require.NoError(t, err)
	assert.Len(t, got, len(raw))
}

func TestStreams(t *testing.T) {
	c, err := New(WithLevel(BestSpeed))
	require.NoError(t, err)

	raw := bytes.Repeat([]byte("0123456789abcdef"), 1<<16)
	var compressed bytes.Buffer
	n, err := c.CompressStream(&compressed, bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), n)
	assert.Less(t, compressed.Len(), len(raw))

	var out bytes.Buffer
	n, err = c.DecompressStream(&out, &compressed)
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), n)
	assert.True(t, bytes.Equal(raw, out.Bytes()))
}
