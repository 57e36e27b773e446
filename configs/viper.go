// This file implements Viper-based configuration management with environment
// overrides, command-line flag binding and hot reloading.
//
// 本文件实现基于Viper的配置管理，支持环境变量覆盖、命令行参数绑定和热重载。
package configs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override file values.
// server.address is read from ENCDEC_SERVER_ADDRESS.
//
// EnvPrefix 是覆盖文件值的环境变量前缀。
const EnvPrefix = "ENCDEC"

// FlagKeys maps command-line flag names to configuration keys.
// Only flags present in the bound flag set are used.
//
// FlagKeys 将命令行参数名映射到配置键。
var FlagKeys = map[string]string{
	"address":                "server.address",
	"gin-mode":               "server.gin_mode",
	"max-body-bytes":         "server.max_body_bytes",
	"compression-level":      "codec.compression_level",
	"max-decompressed-bytes": "codec.max_decompressed_bytes",
	"metrics-level":          "metrics.level",
	"log-level":              "log.level",
	"log-format":             "log.format",
	"log-output":             "log.output",
	"hot-reload":             "extensions.hot_reload.enable",
}

// ViperConfig wraps a Config with Viper functionality for hot reloading.
// It provides thread-safe access to configuration and supports dynamic
// updates when the underlying configuration file changes.
//
// ViperConfig 使用Viper功能包装Config以支持热重载。
// 它提供对配置的线程安全访问，并支持在底层配置文件更改时进行动态更新。
type ViperConfig struct {
	config      *Config         // Current configuration / 当前配置
	viper       *viper.Viper    // Viper instance for configuration management / 用于配置管理的Viper实例
	configFile  string          // Path to the configuration file, may be empty / 配置文件路径，可以为空
	logger      *slog.Logger    // Logger for reload events / 重载事件的日志记录器
	mu          sync.RWMutex    // Mutex for thread-safe access / 用于线程安全访问的互斥锁
	subscribers []func(*Config) // List of subscribers to notify on config changes / 配置更改时要通知的订阅者列表
}

// NewViperConfig creates a new ViperConfig.
// It loads defaults, the optional configuration file and ENCDEC_ environment
// variables, then validates the result.
//
// NewViperConfig 创建一个新的ViperConfig。
// 它加载默认值、可选的配置文件和ENCDEC_环境变量，然后验证结果。
//
// Parameters:
//   - configFile: Path to the configuration file, or "" for defaults and environment only
//
// Returns:
//   - *ViperConfig: A new ViperConfig instance
//   - error: An error if loading or validation fails
//
// 参数：
//   - configFile: 配置文件的路径，为空时仅使用默认值和环境变量
//
// 返回：
//   - *ViperConfig: 一个新的ViperConfig实例
//   - error: 如果加载或验证失败则返回错误
func NewViperConfig(configFile string) (*ViperConfig, error) {
	return NewViperConfigWithFlags(configFile, nil)
}

// NewViperConfigWithFlags is like NewViperConfig, and additionally lets
// changed flags from the given set override every other source.
//
// NewViperConfigWithFlags 与NewViperConfig相同，另外允许已修改的命令行参数覆盖其他所有来源。
func NewViperConfigWithFlags(configFile string, flags *pflag.FlagSet) (*ViperConfig, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(configFile), "."))

		// Read the config file
		// 读取配置文件
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}

	return &ViperConfig{
		config:      config,
		viper:       v,
		configFile:  configFile,
		logger:      slog.Default(),
		subscribers: make([]func(*Config), 0),
	}, nil
}

// SetLogger replaces the logger used for reload events.
//
// SetLogger 替换用于重载事件的日志记录器。
func (vc *ViperConfig) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	vc.mu.Lock()
	vc.logger = logger
	vc.mu.Unlock()
}

// ConfigFile returns the path of the watched file, or "".
func (vc *ViperConfig) ConfigFile() string {
	return vc.configFile
}

// EnableHotReload enables fsnotify-based reloading of the configuration file.
// When the file changes, the configuration is reloaded and all subscribers are
// notified. Invalid files are logged and ignored.
//
// EnableHotReload 启用基于fsnotify的配置文件热重载。
// 当文件更改时，配置会重新加载，并通知所有订阅者。无效文件会被记录并忽略。
func (vc *ViperConfig) EnableHotReload() error {
	if vc.configFile == "" {
		return fmt.Errorf("hot reload requires a configuration file")
	}

	vc.viper.OnConfigChange(func(e fsnotify.Event) {
		vc.log().Info("config file changed", "file", e.Name, "op", e.Op.String())
		vc.reload()
	})
	vc.viper.WatchConfig()
	return nil
}

// Watch polls the configuration file every interval until ctx is done.
// It is an alternative to EnableHotReload for file systems where
// notifications are unreliable.
//
// Watch 每隔interval轮询配置文件，直到ctx结束。
// 在文件系统通知不可靠的环境中，它是EnableHotReload的替代方案。
//
// Parameters:
//   - ctx: Stops the watcher when done
//   - interval: How often to check for changes
//
// 参数：
//   - ctx: 结束时停止监视器
//   - interval: 检查更改的频率
func (vc *ViperConfig) Watch(ctx context.Context, interval time.Duration) error {
	if vc.configFile == "" {
		return fmt.Errorf("watching requires a configuration file")
	}
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := vc.viper.ReadInConfig(); err != nil {
					vc.log().Warn("failed to read config file", "file", vc.configFile, "error", err)
					continue
				}
				vc.reload()
			}
		}
	}()

	return nil
}

// reload decodes the current viper state and, when it differs from the
// active configuration, swaps it in and notifies subscribers.
func (vc *ViperConfig) reload() {
	newConfig, err := decode(vc.viper)
	if err != nil {
		vc.log().Error("rejected configuration", "error", err)
		return
	}

	vc.mu.Lock()
	if configsEqual(vc.config, newConfig) {
		vc.mu.Unlock()
		return
	}
	vc.config = newConfig
	subscribers := make([]func(*Config), len(vc.subscribers))
	copy(subscribers, vc.subscribers)
	vc.mu.Unlock()

	vc.log().Info("configuration reloaded", "subscribers", len(subscribers))

	// Notify subscribers
	// 通知订阅者
	for _, subscriber := range subscribers {
		subscriber(newConfig)
	}
}

// Subscribe adds a subscriber that will be notified when the configuration changes.
// The subscriber function is called with the new configuration as its argument.
//
// Subscribe 添加一个在配置更改时将被通知的订阅者。
// 订阅者函数将以新配置作为其参数被调用。
//
// Parameters:
//   - subscriber: A function to call when the configuration changes
//
// 参数：
//   - subscriber: 配置更改时要调用的函数
func (vc *ViperConfig) Subscribe(subscriber func(*Config)) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.subscribers = append(vc.subscribers, subscriber)
}

// Get returns the current configuration.
// This method is thread-safe and can be called concurrently.
//
// Get 返回当前配置。
// 此方法是线程安全的，可以并发调用。
func (vc *ViperConfig) Get() *Config {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.config
}

func (vc *ViperConfig) log() *slog.Logger {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.logger
}

// LoadViperConfig loads a configuration using Viper and starts the watcher the
// loaded configuration asks for. A zero watch interval selects fsnotify,
// a positive one selects polling.
//
// LoadViperConfig 使用Viper加载配置，并按加载的配置启动监视器。
// 监视间隔为零时使用fsnotify，为正时使用轮询。
//
// Parameters:
//   - ctx: Stops a polling watcher when done
//   - configFile: Path to the configuration file, may be empty
//   - flags: Command-line flags to bind, may be nil
//
// Returns:
//   - *ViperConfig: A new ViperConfig instance
//   - error: An error if loading fails
func LoadViperConfig(ctx context.Context, configFile string, flags *pflag.FlagSet) (*ViperConfig, error) {
	vc, err := NewViperConfigWithFlags(configFile, flags)
	if err != nil {
		return nil, err
	}

	hot := vc.Get().Extensions.HotReload
	if !hot.Enable || configFile == "" {
		return vc, nil
	}

	if hot.WatchInterval > 0 {
		err = vc.Watch(ctx, hot.WatchInterval)
	} else {
		err = vc.EnableHotReload()
	}
	if err != nil {
		return nil, err
	}

	return vc, nil
}

func decode(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()

	// Unmarshal into the config struct
	// 将配置解析到配置结构中
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so that AutomaticEnv can override keys
// absent from the file.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("server.address", c.Server.Address)
	v.SetDefault("server.read_timeout", c.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", c.Server.MaxBodyBytes)
	v.SetDefault("server.gin_mode", c.Server.GinMode)

	v.SetDefault("codec.compress_by_default", c.Codec.CompressByDefault)
	v.SetDefault("codec.compression_level", c.Codec.CompressionLevel)
	v.SetDefault("codec.max_decompressed_bytes", c.Codec.MaxDecompressedBytes)

	v.SetDefault("metrics.enable", c.Metrics.Enable)
	v.SetDefault("metrics.level", c.Metrics.Level)
	v.SetDefault("metrics.path", c.Metrics.Path)
	v.SetDefault("metrics.histogram_buckets", c.Metrics.HistogramBuckets)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("log.output", c.Log.Output)
	v.SetDefault("log.file_path", c.Log.FilePath)

	v.SetDefault("extensions.hot_reload.enable", c.Extensions.HotReload.Enable)
	v.SetDefault("extensions.hot_reload.watch_interval", c.Extensions.HotReload.WatchInterval)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// configsEqual reports whether two configurations hold the same values.
//
// configsEqual 检查两个配置是否相等。
func configsEqual(c1, c2 *Config) bool {
	return reflect.DeepEqual(c1, c2)
}
