// Package pipeline composes the compression and transport stages into the
// single operation encdec exposes: turn text into base64 (optionally gzipped
// first) and back.
//
// Encoding interprets the input text as its UTF-8 bytes. Decoding returns
// the recovered bytes verbatim as a Go string; callers that render the
// result decide how to present bytes that are not valid UTF-8.
//
// A Pipeline holds only immutable settings and may be shared by any number
// of goroutines.
package pipeline

import (
	"fmt"

	"github.com/yourusername/encdec/pkg/codec"
	"github.com/yourusername/encdec/pkg/compress"
	encerrors "github.com/yourusername/encdec/pkg/errors"
)

// Pipeline runs encode and decode requests.
type Pipeline struct {
	compressed codec.Chain
	plain      codec.Chain
	level      int
	maxOutput  int64
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	level     int
	maxOutput int64
}

// WithCompressionLevel sets the gzip effort level used when encoding.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithMaxDecompressedBytes bounds decompressed output. Zero means unlimited.
func WithMaxDecompressedBytes(n int64) Option {
	return func(o *options) {
		o.maxOutput = n
	}
}

// New creates a Pipeline.
func New(opts ...Option) (*Pipeline, error) {
	o := options{level: compress.DefaultCompression}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := compress.New(
		compress.WithLevel(o.level),
		compress.WithMaxDecompressedBytes(o.maxOutput),
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	transport := codec.NewBase64Stage()
	return &Pipeline{
		compressed: codec.NewChain(codec.NewGzipStage(c), transport),
		plain:      codec.NewChain(transport),
		level:      o.level,
		maxOutput:  o.maxOutput,
	}, nil
}

// CompressionLevel returns the configured gzip level.
func (p *Pipeline) CompressionLevel() int {
	return p.level
}

// MaxDecompressedBytes returns the decompression limit, zero if unlimited.
func (p *Pipeline) MaxDecompressedBytes() int64 {
	return p.maxOutput
}

// Run transforms input in the given direction.
//
// On Encode the UTF-8 bytes of input are gzipped when useCompression is set
// and then base64-encoded. On Decode input is base64-decoded and, when
// useCompression is set, gunzipped. Errors are classified *errors.Error
// values; no partial output is returned.
//
// Empty input is passed through: encoding "" succeeds, and decoding "" with
// compression fails with TruncatedStream because no gzip stream is present.
func (p *Pipeline) Run(mode Mode, useCompression bool, input string) (string, error) {
	chain := p.plain
	if useCompression {
		chain = p.compressed
	}

	switch mode {
	case Encode:
		out, err := chain.Apply([]byte(input))
		if err != nil {
			return "", err
		}
		return string(out), nil
	case Decode:
		out, err := chain.Reverse([]byte(input))
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", encerrors.New(encerrors.KindInvalidMode, "pipeline.run",
			fmt.Sprintf("unsupported mode %s", mode))
	}
}

// Stages returns the stage names Run applies for the given flag, in encode
// order.
func (p *Pipeline) Stages(useCompression bool) string {
	if useCompression {
		return p.compressed.Name()
	}
	return p.plain.Name()
}

// Result is the outcome of Process: either Output, or a Kind and Message.
type Result struct {
	Output  string
	Kind    encerrors.Kind
	Message string
}

// OK reports whether the request succeeded.
func (r Result) OK() bool {
	return r.Kind == encerrors.KindNone
}

// Empty reports whether the request was skipped for lack of input.
func (r Result) Empty() bool {
	return r.Kind == encerrors.KindEmptyInput
}

// Failed reports whether the request failed. Empty input is not a failure.
func (r Result) Failed() bool {
	return !r.OK() && !r.Empty()
}

// Err returns the result as an error, nil when the request succeeded.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return encerrors.New(r.Kind, "", r.Message)
}

// Process is the entry point for request handlers. Empty input
// short-circuits to an EmptyInput result before the mode is examined; the
// mode string is parsed once and unknown values yield InvalidMode.
func (p *Pipeline) Process(mode string, useCompression bool, input string) Result {
	if input == "" {
		return Result{Kind: encerrors.KindEmptyInput, Message: "no input"}
	}

	m, err := ParseMode(mode)
	if err != nil {
		return failure(err)
	}

	out, err := p.Run(m, useCompression, input)
	if err != nil {
		return failure(err)
	}
	return Result{Output: out}
}

func failure(err error) Result {
	kind := encerrors.KindOf(err)
	if kind == encerrors.KindNone {
		// Unclassified errors only come from writer failures inside the
		// compressor; report them as corrupt data rather than success.
		kind = encerrors.KindCorruptBlock
	}
	return Result{Kind: kind, Message: encerrors.MessageOf(err)}
}
