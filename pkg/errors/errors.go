// Package errors provides the classified error types returned by the encdec
// codec pipeline. Every failure carries a Kind that callers branch on, plus a
// human-readable message intended for display.
//
// Package errors 提供encdec编解码管道返回的分类错误类型。
// 每个失败都带有调用方可以据此分支的Kind，以及用于展示的可读消息。
package errors

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
// Callers should branch on Kind rather than matching error strings.
//
// Kind 是用于程序化错误处理的稳定类别。
// 调用方应根据Kind分支，而不是匹配错误字符串。
type Kind string

const (
	// KindNone is reported for a nil error or an error outside the taxonomy.
	// KindNone 表示nil错误或不属于分类的错误。
	KindNone Kind = ""

	// KindMalformedTransportInput means the base64 text is not valid:
	// bad length, bad alphabet or bad padding placement.
	// KindMalformedTransportInput 表示base64文本无效：长度、字符表或填充位置错误。
	KindMalformedTransportInput Kind = "MalformedTransportInput"

	// KindInvalidStreamHeader means the gzip magic or method bytes are absent or unrecognized.
	// KindInvalidStreamHeader 表示gzip魔数或压缩方法字节缺失或无法识别。
	KindInvalidStreamHeader Kind = "InvalidStreamHeader"

	// KindTruncatedStream means the compressed stream ended early.
	// KindTruncatedStream 表示压缩流提前结束。
	KindTruncatedStream Kind = "TruncatedStream"

	// KindChecksumMismatch means the CRC32 or size trailer did not match the payload.
	// KindChecksumMismatch 表示CRC32或长度尾部与数据不匹配。
	KindChecksumMismatch Kind = "ChecksumMismatch"

	// KindCorruptBlock means the deflate block data could not be parsed.
	// KindCorruptBlock 表示deflate块数据无法解析。
	KindCorruptBlock Kind = "CorruptBlock"

	// KindEmptyInput is not a true failure: there was nothing to process.
	// KindEmptyInput 不是真正的错误：没有需要处理的内容。
	KindEmptyInput Kind = "EmptyInput"

	// KindInvalidMode means the requested direction is neither encode nor decode.
	// KindInvalidMode 表示请求的方向既不是encode也不是decode。
	KindInvalidMode Kind = "InvalidMode"
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindNone {
		return "None"
	}
	return string(k)
}

// Error is the classified error type of the pipeline.
//
// Op names the stage that failed ("transport.decode", "compress.decompress", ...).
// Message is intended for humans; do not match on it.
//
// Error 是管道的分类错误类型。
// Op 表示失败的阶段；Message 面向用户，不要对其进行匹配。
type Error struct {
	Kind    Kind   // Failure category / 失败类别
	Op      string // Stage that failed / 失败的阶段
	Message string // Human-readable description / 可读描述
	Err     error  // Underlying cause, may be nil / 底层原因，可能为nil
}

// Error returns the error message.
// It implements the error interface.
//
// Error 返回错误消息。
// 它实现了error接口。
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap returns the underlying error.
// This allows errors.Is and errors.As to work with wrapped errors.
//
// Unwrap 返回底层错误。
// 这允许errors.Is和errors.As与包装的错误一起工作。
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
// It lets the sentinels below be matched with errors.Is.
//
// Is 判断target是否为相同Kind的*Error，使下面的哨兵错误可以用errors.Is匹配。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for the conditions callers commonly test with errors.Is.
//
// 调用方常用errors.Is检查的哨兵错误。
var (
	// ErrEmptyInput matches any KindEmptyInput error.
	// ErrEmptyInput 匹配任何KindEmptyInput错误。
	ErrEmptyInput = &Error{Kind: KindEmptyInput, Message: "no input"}

	// ErrInvalidMode matches any KindInvalidMode error.
	// ErrInvalidMode 匹配任何KindInvalidMode错误。
	ErrInvalidMode = &Error{Kind: KindInvalidMode, Message: "invalid mode"}

	// ErrMalformedTransportInput matches any KindMalformedTransportInput error.
	// ErrMalformedTransportInput 匹配任何KindMalformedTransportInput错误。
	ErrMalformedTransportInput = &Error{Kind: KindMalformedTransportInput, Message: "malformed transport input"}

	// ErrChecksumMismatch matches any KindChecksumMismatch error.
	// ErrChecksumMismatch 匹配任何KindChecksumMismatch错误。
	ErrChecksumMismatch = &Error{Kind: KindChecksumMismatch, Message: "checksum mismatch"}
)

// New creates a classified error without an underlying cause.
//
// New 创建一个没有底层原因的分类错误。
//
// Parameters:
//   - kind: The failure category
//   - op: The stage that failed
//   - msg: The human-readable message
//
// Returns:
//   - *Error: A new classified error
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

// Wrap creates a classified error around cause.
//
// Wrap 用cause创建一个分类错误。
//
// Parameters:
//   - kind: The failure category
//   - op: The stage that failed
//   - msg: The human-readable message
//   - cause: The underlying error
//
// Returns:
//   - *Error: A new classified error
func Wrap(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Err: cause}
}

// KindOf returns the Kind of err, or KindNone when err is nil or unclassified.
//
// KindOf 返回err的Kind；当err为nil或未分类时返回KindNone。
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return KindNone
	}
	return e.Kind
}

// MessageOf returns the human-readable message of a classified error,
// falling back to err.Error() for anything else.
//
// MessageOf 返回分类错误的可读消息，其他错误返回err.Error()。
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
//
// IsKind 判断err是否为（或包装了）给定Kind的*Error。
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsMalformedTransport returns true if the transport text could not be decoded.
//
// IsMalformedTransport 如果传输文本无法解码，则返回true。
func IsMalformedTransport(err error) bool {
	return IsKind(err, KindMalformedTransportInput)
}

// IsStreamError returns true if the error came from decompressing a gzip stream.
//
// IsStreamError 如果错误来自gzip流解压，则返回true。
func IsStreamError(err error) bool {
	switch KindOf(err) {
	case KindInvalidStreamHeader, KindTruncatedStream, KindChecksumMismatch, KindCorruptBlock:
		return true
	default:
		return false
	}
}

// IsEmptyInput returns true if the error signals that there was nothing to do.
//
// IsEmptyInput 如果错误表示没有需要处理的内容，则返回true。
func IsEmptyInput(err error) bool {
	return IsKind(err, KindEmptyInput)
}

// IsInvalidMode returns true if the requested mode was not recognized.
//
// IsInvalidMode 如果请求的模式无法识别，则返回true。
func IsInvalidMode(err error) bool {
	return IsKind(err, KindInvalidMode)
}
