// Package codec provides the byte-stage abstraction the encdec pipeline is
// assembled from. A stage transforms bytes in one direction (Apply) and
// restores them in the other (Reverse); stages compose into a Chain.
//
// Package codec 提供encdec管道所使用的字节阶段抽象。
// 阶段在一个方向上转换字节（Apply），在另一个方向上还原（Reverse）；多个阶段可以组合成Chain。
package codec

import (
	"fmt"

	"github.com/yourusername/encdec/pkg/compress"
	"github.com/yourusername/encdec/pkg/transport"
)

// Stage defines one reversible transformation step.
//
// Stage 定义一个可逆的转换步骤。
type Stage interface {
	// Apply transforms input in the forward (encode) direction.
	//
	// Apply 在正向（编码）方向上转换输入。
	//
	// Parameters:
	//   - data: The bytes to transform
	//
	// Returns:
	//   - []byte: The transformed bytes
	//   - error: An error if the transformation fails
	Apply(data []byte) ([]byte, error)

	// Reverse undoes Apply.
	//
	// Reverse 撤销Apply。
	//
	// Parameters:
	//   - data: The bytes produced by Apply
	//
	// Returns:
	//   - []byte: The original bytes
	//   - error: A classified error if data is not valid for this stage
	Reverse(data []byte) ([]byte, error)

	// Name returns the name of this stage.
	// This is useful for identification and logging.
	//
	// Name 返回此阶段的名称，用于标识和日志记录。
	Name() string
}

// GzipStage compresses on Apply and decompresses on Reverse.
//
// GzipStage 在Apply时压缩，在Reverse时解压。
type GzipStage struct {
	compressor *compress.Compressor
}

// NewGzipStage creates a GzipStage. A nil compressor selects the defaults.
//
// NewGzipStage 创建一个GzipStage。compressor为nil时使用默认设置。
func NewGzipStage(c *compress.Compressor) *GzipStage {
	if c == nil {
		c, _ = compress.New()
	}
	return &GzipStage{compressor: c}
}

// Apply compresses data into a gzip stream.
func (s *GzipStage) Apply(data []byte) ([]byte, error) {
	return s.compressor.Compress(data)
}

// Reverse decompresses a gzip stream.
func (s *GzipStage) Reverse(data []byte) ([]byte, error) {
	return s.compressor.Decompress(data)
}

// Name returns "gzip".
func (s *GzipStage) Name() string {
	return "gzip"
}

// Base64Stage maps bytes to padded base64 text on Apply and back on Reverse.
//
// Base64Stage 在Apply时将字节映射为带填充的base64文本，在Reverse时还原。
type Base64Stage struct{}

// NewBase64Stage creates a Base64Stage.
func NewBase64Stage() *Base64Stage {
	return &Base64Stage{}
}

// Apply encodes data. It never fails.
func (s *Base64Stage) Apply(data []byte) ([]byte, error) {
	return []byte(transport.Encode(data)), nil
}

// Reverse decodes base64 text.
func (s *Base64Stage) Reverse(data []byte) ([]byte, error) {
	return transport.Decode(string(data))
}

// Name returns "base64".
func (s *Base64Stage) Name() string {
	return "base64"
}

// IdentityStage passes bytes through unchanged in both directions.
//
// IdentityStage 在两个方向上都原样传递字节。
type IdentityStage struct{}

// NewIdentityStage creates an IdentityStage.
func NewIdentityStage() *IdentityStage {
	return &IdentityStage{}
}

// Apply returns data unchanged.
func (s *IdentityStage) Apply(data []byte) ([]byte, error) {
	return data, nil
}

// Reverse returns data unchanged.
func (s *IdentityStage) Reverse(data []byte) ([]byte, error) {
	return data, nil
}

// Name returns "identity".
func (s *IdentityStage) Name() string {
	return "identity"
}

// Chain runs stages in order on Apply and in reverse order on Reverse,
// stopping at the first error.
//
// Chain 在Apply时按顺序执行各阶段，在Reverse时按相反顺序执行，遇到第一个错误即停止。
type Chain []Stage

// NewChain creates a Chain of the given stages.
func NewChain(stages ...Stage) Chain {
	return Chain(stages)
}

// Apply runs every stage forward.
func (c Chain) Apply(data []byte) ([]byte, error) {
	var err error
	for _, stage := range c {
		if data, err = stage.Apply(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Reverse runs every stage backward, last stage first.
func (c Chain) Reverse(data []byte) ([]byte, error) {
	var err error
	for i := len(c) - 1; i >= 0; i-- {
		if data, err = c[i].Reverse(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Name joins the stage names with "+", e.g. "gzip+base64".
func (c Chain) Name() string {
	if len(c) == 0 {
		return "identity"
	}
	name := c[0].Name()
	for _, stage := range c[1:] {
		name += "+" + stage.Name()
	}
	return name
}

// GetStage returns a stage by name.
// Supported names: "gzip", "base64", "identity".
//
// GetStage 通过名称返回阶段。
// 支持的名称："gzip"、"base64"、"identity"。
//
// Parameters:
//   - name: The stage name
//
// Returns:
//   - Stage: The requested stage
//   - error: An error if the stage name is unknown
func GetStage(name string) (Stage, error) {
	switch name {
	case "gzip":
		return NewGzipStage(nil), nil
	case "base64":
		return NewBase64Stage(), nil
	case "identity", "":
		return NewIdentityStage(), nil
	default:
		return nil, fmt.Errorf("unknown stage: %s", name)
	}
}
