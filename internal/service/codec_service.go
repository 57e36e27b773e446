// Package service implements the business layer between the HTTP and CLI
// front ends and the codec pipeline. It records metrics and logs for every
// run and swaps the pipeline when the configuration is reloaded.
//
// Package service 实现HTTP和CLI前端与编解码管道之间的业务层。
// 它为每次运行记录指标和日志，并在配置重载时替换管道。
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yourusername/encdec/configs"
	"github.com/yourusername/encdec/internal/metrics"
	encerrors "github.com/yourusername/encdec/pkg/errors"
	"github.com/yourusername/encdec/pkg/pipeline"
)

// Request is one encode or decode request.
//
// Request 表示一次编码或解码请求。
type Request struct {
	// Mode is "encode" or "decode"
	// Mode 为"encode"或"decode"
	Mode string

	// Compress selects the gzip stage
	// Compress 选择是否使用gzip阶段
	Compress bool

	// Input is the plaintext for encode or the transport text for decode
	// Input 编码时为明文，解码时为传输文本
	Input string
}

// CodecService runs requests through the current pipeline.
// It is safe for concurrent use.
//
// CodecService 通过当前管道运行请求。
// 可以安全地并发使用。
type CodecService struct {
	pipeline          atomic.Pointer[pipeline.Pipeline]
	compressByDefault atomic.Bool
	metrics           *metrics.Metrics
	logger            *slog.Logger
}

// NewCodecService creates a service from the codec configuration.
//
// NewCodecService 根据编解码配置创建服务。
//
// Parameters:
//   - cfg: Codec configuration
//   - m: Metrics collector, may be nil
//   - logger: Logger, may be nil
//
// Returns:
//   - *CodecService: A new service instance
//   - error: An error if the configuration is rejected by the pipeline
func NewCodecService(cfg configs.CodecConfig, m *metrics.Metrics, logger *slog.Logger) (*CodecService, error) {
	if m == nil {
		m = metrics.New(&metrics.Config{Level: metrics.Disabled})
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &CodecService{metrics: m, logger: logger}
	if err := s.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateConfig builds a pipeline from cfg and swaps it in. Runs already in
// flight finish on the previous pipeline.
//
// UpdateConfig 根据cfg构建管道并替换当前管道。正在进行的运行使用之前的管道完成。
func (s *CodecService) UpdateConfig(cfg configs.CodecConfig) error {
	p, err := pipeline.New(
		pipeline.WithCompressionLevel(cfg.CompressionLevel),
		pipeline.WithMaxDecompressedBytes(cfg.MaxDecompressedBytes),
	)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	old := s.pipeline.Swap(p)
	s.compressByDefault.Store(cfg.CompressByDefault)

	if old != nil {
		s.logger.Info("codec pipeline replaced",
			"compression_level", cfg.CompressionLevel,
			"max_decompressed_bytes", cfg.MaxDecompressedBytes,
			"compress_by_default", cfg.CompressByDefault,
		)
	}
	return nil
}

// CompressByDefault reports whether new forms start with compression on.
func (s *CodecService) CompressByDefault() bool {
	return s.compressByDefault.Load()
}

// Pipeline returns the pipeline currently in use.
func (s *CodecService) Pipeline() *pipeline.Pipeline {
	return s.pipeline.Load()
}

// Process runs one request. Empty input yields an empty result without
// running the pipeline. Failures are returned as classified results, never
// as raw errors.
//
// Process 运行一个请求。空输入直接返回空结果，不运行管道。
// 失败以分类结果返回，而不是原始错误。
func (s *CodecService) Process(ctx context.Context, req Request) pipeline.Result {
	start := time.Now()
	res := s.pipeline.Load().Process(req.Mode, req.Compress, req.Input)
	latency := time.Since(start)

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	s.metrics.Observe(metrics.Observation{
		Mode:       mode,
		Compressed: req.Compress,
		Kind:       res.Kind,
		BytesIn:    len(req.Input),
		BytesOut:   len(res.Output),
		Latency:    latency,
	})

	switch {
	case res.Empty():
		s.logger.DebugContext(ctx, "empty input", "mode", mode)
	case res.Failed():
		s.logger.InfoContext(ctx, "codec run failed",
			"mode", mode,
			"compress", req.Compress,
			"kind", res.Kind.String(),
			"error", res.Message,
			"input_bytes", len(req.Input),
		)
	default:
		s.logger.DebugContext(ctx, "codec run",
			"mode", mode,
			"compress", req.Compress,
			"input_bytes", len(req.Input),
			"output_bytes", len(res.Output),
			"latency", latency,
		)
	}

	return res
}

// Example runs the worked example through the current pipeline.
//
// Example 通过当前管道运行示例。
func (s *CodecService) Example(ctx context.Context) (pipeline.Example, error) {
	start := time.Now()
	example, err := s.pipeline.Load().RunExample()

	kind := encerrors.KindNone
	if err != nil {
		kind = encerrors.KindOf(err)
		if kind == encerrors.KindNone {
			kind = encerrors.KindCorruptBlock
		}
		s.logger.ErrorContext(ctx, "example failed", "error", err)
	}
	s.metrics.Observe(metrics.Observation{
		Mode:       pipeline.Decode.String(),
		Compressed: true,
		Kind:       kind,
		BytesIn:    len(pipeline.ExampleTransportText),
		BytesOut:   len(example.Decoded),
		Latency:    time.Since(start),
	})

	return example, err
}
