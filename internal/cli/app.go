// Package cli implements the encdec command line: a server command and
// one-shot encode, decode and example commands sharing one configuration.
//
// Package cli 实现encdec命令行：服务器命令以及共享同一配置的一次性编码、解码和示例命令。
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/yourusername/encdec/configs"
	"github.com/yourusername/encdec/internal/logging"
	"github.com/yourusername/encdec/internal/metrics"
	"github.com/yourusername/encdec/internal/service"
)

// App holds the state shared by all commands of one invocation.
//
// App 保存一次调用中所有命令共享的状态。
type App struct {
	// I/O
	Out io.Writer
	Err io.Writer
	In  io.Reader

	// Flags
	CfgFile string
	Verbose bool

	// Loaded in PersistentPreRunE
	Config *configs.ViperConfig
}

// New creates an App wired to the process streams.
func New() *App {
	return &App{
		Out: os.Stdout,
		Err: os.Stderr,
		In:  os.Stdin,
	}
}

// InitConfig loads the configuration file, environment and changed flags.
//
// InitConfig 加载配置文件、环境变量和已修改的命令行参数。
func (a *App) InitConfig(ctx context.Context, flags *pflag.FlagSet) error {
	vc, err := configs.LoadViperConfig(ctx, a.CfgFile, flags)
	if err != nil {
		return err
	}
	a.Config = vc
	return nil
}

// NewLogger builds the logger described by the current configuration.
func (a *App) NewLogger() (*logging.Logger, error) {
	return logging.New(a.Config.Get().Log)
}

// NewMetrics builds the metrics collector described by the current configuration.
func (a *App) NewMetrics() (*metrics.Metrics, error) {
	cfg := a.Config.Get().Metrics
	if !cfg.Enable {
		return metrics.New(&metrics.Config{Level: metrics.Disabled}), nil
	}

	level, err := metrics.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return metrics.New(&metrics.Config{
		Level:                  level,
		EnableLatencyHistogram: level == metrics.Detailed,
		HistogramBuckets:       cfg.HistogramBuckets,
	}), nil
}

// NewCodecService builds a service for the one-shot commands. It logs only
// when --verbose is set.
func (a *App) NewCodecService() (*service.CodecService, error) {
	logger := logging.Discard()
	if a.Verbose {
		l, err := logging.NewWithWriter(a.Err, "text", slog.LevelDebug)
		if err != nil {
			return nil, err
		}
		logger = l
	}

	svc, err := service.NewCodecService(a.Config.Get().Codec, nil, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return svc, nil
}
