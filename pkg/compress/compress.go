// Package compress wraps and unwraps byte sequences in the gzip member format
// (RFC 1952): a 10-byte header starting with the magic 1f 8b and the deflate
// method byte, one or more deflate blocks, and a trailer holding the CRC32 and
// the little-endian length of the uncompressed payload.
//
// Decompression failures are classified into InvalidStreamHeader,
// TruncatedStream, ChecksumMismatch and CorruptBlock errors.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"

	encerrors "github.com/yourusername/encdec/pkg/errors"
)

// Levels accepted by WithLevel.
const (
	NoCompression      = gzip.NoCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
	DefaultCompression = gzip.DefaultCompression
	HuffmanOnly        = gzip.HuffmanOnly
)

// Header bytes every gzip member starts with.
const (
	magic1        = 0x1f
	magic2        = 0x8b
	methodDeflate = 0x08
)

const (
	opCompress   = "compress.compress"
	opDecompress = "compress.decompress"
)

// Compressor holds the fixed settings used for every call. It carries no
// per-call state and is safe for concurrent use.
type Compressor struct {
	level       int
	maxOutput   int64
	multistream bool
}

// Option configures a Compressor.
type Option func(*Compressor)

// WithLevel sets the deflate effort level. Output bytes differ between
// levels; round trips do not.
func WithLevel(level int) Option {
	return func(c *Compressor) {
		c.level = level
	}
}

// WithMaxDecompressedBytes bounds the size of decompressed output.
// Zero means unlimited.
func WithMaxDecompressedBytes(n int64) Option {
	return func(c *Compressor) {
		c.maxOutput = n
	}
}

// WithMultistream controls whether concatenated gzip members are accepted
// and decompressed as one payload. It is enabled by default.
func WithMultistream(enabled bool) Option {
	return func(c *Compressor) {
		c.multistream = enabled
	}
}

// New returns a Compressor configured by opts.
func New(opts ...Option) (*Compressor, error) {
	c := &Compressor{
		level:       DefaultCompression,
		multistream: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if _, err := gzip.NewWriterLevel(io.Discard, c.level); err != nil {
		return nil, fmt.Errorf("gzip: invalid compression level %d: %w", c.level, err)
	}
	if c.maxOutput < 0 {
		return nil, fmt.Errorf("gzip: max decompressed bytes must be non-negative, got %d", c.maxOutput)
	}
	return c, nil
}

// Level reports the configured effort level.
func (c *Compressor) Level() int {
	return c.level
}

// MaxDecompressedBytes reports the decompression limit, zero if unlimited.
func (c *Compressor) MaxDecompressedBytes() int64 {
	return c.maxOutput
}

// Compress returns raw wrapped in a single gzip member. Empty input yields
// a minimal valid stream.
func (c *Compressor) Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(raw)/2 + 32)

	if _, err := c.CompressStream(&buf, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompressStream reads src to EOF and writes one gzip member to dst.
// It returns the number of uncompressed bytes consumed.
func (c *Compressor) CompressStream(dst io.Writer, src io.Reader) (int64, error) {
	zw, err := gzip.NewWriterLevel(dst, c.level)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opCompress, err)
	}

	n, err := io.Copy(zw, src)
	if err != nil {
		_ = zw.Close()
		return n, fmt.Errorf("%s: write: %w", opCompress, err)
	}
	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("%s: close: %w", opCompress, err)
	}
	return n, nil
}

// Decompress returns the payload of the gzip stream in data.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	if err := checkMagic(data); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	// Deflate rarely does better than 4:1 on text.
	buf.Grow(len(data) * 4)

	if _, err := c.DecompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressStream reads a gzip stream from src and writes its payload to
// dst. It returns the number of uncompressed bytes written. Errors produced
// while reading the stream are classified; errors writing to dst are not.
func (c *Compressor) DecompressStream(dst io.Writer, src io.Reader) (int64, error) {
	zr, err := gzip.NewReader(src)
	if err != nil {
		return 0, classify(err)
	}
	defer zr.Close()
	zr.Multistream(c.multistream)

	rec := &recordingReader{r: zr}
	var r io.Reader = rec
	if c.maxOutput > 0 {
		r = io.LimitReader(rec, c.maxOutput+1)
	}

	n, err := io.Copy(dst, r)
	if err != nil {
		if rec.err != nil && errors.Is(err, rec.err) {
			return n, classify(err)
		}
		return n, fmt.Errorf("%s: write: %w", opDecompress, err)
	}
	if c.maxOutput > 0 && n > c.maxOutput {
		return n, encerrors.New(encerrors.KindCorruptBlock, opDecompress,
			fmt.Sprintf("decompressed size limit of %d bytes exceeded", c.maxOutput))
	}
	return n, nil
}

// recordingReader remembers the last non-EOF error of the wrapped reader so
// DecompressStream can tell stream errors from destination errors.
type recordingReader struct {
	r   io.Reader
	err error
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && err != io.EOF {
		rr.err = err
	}
	return n, err
}

func checkMagic(data []byte) error {
	if len(data) == 0 {
		return encerrors.New(encerrors.KindTruncatedStream, opDecompress,
			"empty input is not a gzip stream")
	}
	want := [...]byte{magic1, magic2, methodDeflate}
	for i := 0; i < len(want) && i < len(data); i++ {
		if data[i] != want[i] {
			if i == 2 {
				return encerrors.New(encerrors.KindInvalidStreamHeader, opDecompress,
					fmt.Sprintf("unsupported compression method %d", data[i]))
			}
			return encerrors.New(encerrors.KindInvalidStreamHeader, opDecompress,
				"not in gzip format")
		}
	}
	return nil
}

func classify(err error) error {
	var corrupt flate.CorruptInputError
	switch {
	case errors.Is(err, gzip.ErrHeader):
		return encerrors.Wrap(encerrors.KindInvalidStreamHeader, opDecompress,
			"not in gzip format", err)
	case errors.Is(err, gzip.ErrChecksum):
		return encerrors.Wrap(encerrors.KindChecksumMismatch, opDecompress,
			"CRC32 or length trailer does not match the payload", err)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return encerrors.Wrap(encerrors.KindTruncatedStream, opDecompress,
			"unexpected end of gzip stream", err)
	case errors.As(err, &corrupt):
		return encerrors.Wrap(encerrors.KindCorruptBlock, opDecompress,
			fmt.Sprintf("corrupt deflate data at offset %d", int64(corrupt)), err)
	default:
		return encerrors.Wrap(encerrors.KindCorruptBlock, opDecompress,
			fmt.Sprintf("invalid deflate data: %v", err), err)
	}
}

func defaultCompressor() *Compressor {
	return &Compressor{level: DefaultCompression, multistream: true}
}

// Compress wraps raw using the default level.
func Compress(raw []byte) ([]byte, error) {
	return defaultCompressor().Compress(raw)
}

// Decompress unwraps data without a size limit.
func Decompress(data []byte) ([]byte, error) {
	return defaultCompressor().Decompress(data)
}
