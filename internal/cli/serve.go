package cli

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/encdec/configs"
	"github.com/yourusername/encdec/internal/metrics"
	"github.com/yourusername/encdec/internal/server"
	"github.com/yourusername/encdec/internal/service"
)

// NewServeCommand returns the "encdec serve" command.
//
// NewServeCommand 返回"encdec serve"命令。
func NewServeCommand(a *App) *cobra.Command {
	defaults := configs.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the encode/decode web form",
		Long: "Serve the web form, the JSON API and the metrics endpoint until interrupted. " +
			"With hot reload enabled, codec, log and metrics settings follow the config file.",
		Example: `  encdec serve
  encdec serve --address 127.0.0.1:9000 --compression-level 9
  encdec serve --config encdec.yaml --hot-reload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.Config.Get()

			logger, err := a.NewLogger()
			if err != nil {
				return err
			}
			defer logger.Close()
			a.Config.SetLogger(logger.Logger)

			m, err := a.NewMetrics()
			if err != nil {
				return err
			}

			svc, err := service.NewCodecService(cfg.Codec, m, logger.Logger)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, svc, m, logger.Logger)
			if err != nil {
				return err
			}

			a.Config.Subscribe(func(next *configs.Config) {
				if err := svc.UpdateConfig(next.Codec); err != nil {
					logger.Error("codec settings not applied", "error", err)
				}
				if err := logger.SetLevel(next.Log.Level); err != nil {
					logger.Error("log level not applied", "error", err)
				}
				if next.Metrics.Enable {
					if level, err := metrics.ParseLevel(next.Metrics.Level); err == nil {
						if level == metrics.Detailed {
							m.EnableLatencyHistogram(next.Metrics.HistogramBuckets)
						}
						m.SetLevel(level)
					}
				} else {
					m.SetLevel(metrics.Disabled)
				}
				if next.Server.Address != cfg.Server.Address {
					logger.Warn("server address changes need a restart",
						"current", cfg.Server.Address,
						"configured", next.Server.Address,
					)
				}
			})

			logger.Info("starting encdec",
				"version", cmd.Root().Version,
				"address", cfg.Server.Address,
				"config", a.Config.ConfigFile(),
			)
			return srv.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("address", defaults.Server.Address, "listen address")
	flags.String("gin-mode", defaults.Server.GinMode, "gin mode: debug, release, test")
	flags.Int64("max-body-bytes", defaults.Server.MaxBodyBytes, "maximum request body size")
	flags.Int("compression-level", defaults.Codec.CompressionLevel, "gzip level, -2 to 9")
	flags.Int64("max-decompressed-bytes", defaults.Codec.MaxDecompressedBytes, "maximum decompressed size, 0 for no limit")
	flags.String("metrics-level", defaults.Metrics.Level, "metrics level: disabled, basic, detailed")
	flags.String("log-output", defaults.Log.Output, "log output: stdout, stderr, file")
	flags.Bool("hot-reload", defaults.Extensions.HotReload.Enable, "reload the config file when it changes")

	return cmd
}
