// Package configs provides configuration structures and utilities for encdec.
// It offers mechanisms for loading, validating, and saving configuration from
// JSON and YAML files, and a Viper-backed variant with hot reloading.
//
// Package configs 提供encdec的配置结构和工具。
// 它提供从JSON和YAML文件加载、验证和保存配置的机制，以及支持热重载的Viper版本。
package configs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for encdec.
// It is organized into logical sections for the different components.
//
// Config 表示encdec的完整配置。
// 按不同组件的逻辑部分进行组织。
type Config struct {
	// Server configures the HTTP listener
	// Server 配置HTTP监听器
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`

	// Codec configures the encode/decode pipeline
	// Codec 配置编解码管道
	Codec CodecConfig `json:"codec" yaml:"codec" mapstructure:"codec"`

	// Metrics configures request statistics
	// Metrics 配置请求统计
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// Log configures the logging behavior
	// Log 配置日志行为
	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`

	// Extensions configures optional features like hot reloading
	// Extensions 配置可选功能，如热重载
	Extensions ExtensionsConfig `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// Extra allows for custom configuration options
	// Extra 允许自定义配置选项
	Extra map[string]interface{} `json:"extra" yaml:"extra" mapstructure:"extra"`
}

// ServerConfig defines the HTTP server settings.
//
// ServerConfig 定义HTTP服务器设置。
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080"
	// Address 是监听地址，例如":8080"
	Address string `json:"address" yaml:"address" mapstructure:"address"`

	// ReadTimeout bounds reading a whole request
	// ReadTimeout 限制读取整个请求的时间
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout bounds writing a response
	// WriteTimeout 限制写入响应的时间
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown
	// ShutdownTimeout 限制优雅关闭的时间
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// MaxBodyBytes limits the size of a request body
	// MaxBodyBytes 限制请求体大小
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// GinMode is passed to gin.SetMode: debug, release or test
	// GinMode 传递给gin.SetMode：debug、release或test
	GinMode string `json:"gin_mode" yaml:"gin_mode" mapstructure:"gin_mode"`
}

// CodecConfig defines the pipeline settings.
//
// CodecConfig 定义管道设置。
type CodecConfig struct {
	// CompressByDefault pre-checks the compression box on the form
	// CompressByDefault 表单上默认勾选压缩
	CompressByDefault bool `json:"compress_by_default" yaml:"compress_by_default" mapstructure:"compress_by_default"`

	// CompressionLevel is the gzip level, -2 (Huffman only) to 9
	// CompressionLevel 是gzip压缩级别，-2（仅Huffman）到9
	CompressionLevel int `json:"compression_level" yaml:"compression_level" mapstructure:"compression_level"`

	// MaxDecompressedBytes limits decompressed output, 0 for no limit
	// MaxDecompressedBytes 限制解压输出大小，0表示无限制
	MaxDecompressedBytes int64 `json:"max_decompressed_bytes" yaml:"max_decompressed_bytes" mapstructure:"max_decompressed_bytes"`
}

// MetricsConfig defines request metrics settings.
//
// MetricsConfig 定义请求指标设置。
type MetricsConfig struct {
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// Level is one of: disabled, basic, detailed
	// Level 取值：disabled、basic、detailed
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Path is the HTTP path of the Prometheus endpoint
	// Path 是Prometheus端点的HTTP路径
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// HistogramBuckets is the number of latency histogram buckets
	// HistogramBuckets 是延迟直方图的桶数量
	HistogramBuckets int `json:"histogram_buckets" yaml:"histogram_buckets" mapstructure:"histogram_buckets"`
}

// LogConfig defines logging settings.
//
// LogConfig 定义日志设置。
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	Format string `json:"format" yaml:"format" mapstructure:"format"`

	Output string `json:"output" yaml:"output" mapstructure:"output"`

	FilePath string `json:"file_path" yaml:"file_path" mapstructure:"file_path"`
}

// ExtensionsConfig defines optional features.
//
// ExtensionsConfig 定义可选功能。
type ExtensionsConfig struct {
	HotReload HotReloadConfig `json:"hot_reload" yaml:"hot_reload" mapstructure:"hot_reload"`
}

// HotReloadConfig defines configuration file watching.
//
// HotReloadConfig 定义配置文件监视。
type HotReloadConfig struct {
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// WatchInterval is used by the polling watcher
	// WatchInterval 用于轮询监视器
	WatchInterval time.Duration `json:"watch_interval" yaml:"watch_interval" mapstructure:"watch_interval"`
}

// DefaultConfig returns a configuration with default values.
//
// DefaultConfig 返回具有默认值的配置。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    32 << 20, // 32MB
			GinMode:         "release",
		},
		Codec: CodecConfig{
			CompressByDefault:    true,
			CompressionLevel:     -1,
			MaxDecompressedBytes: 64 << 20, // 64MB
		},
		Metrics: MetricsConfig{
			Enable:           true,
			Level:            "basic",
			Path:             "/metrics",
			HistogramBuckets: 20,
		},
		Log: LogConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stderr",
			FilePath: "/var/log/encdec.log",
		},
		Extensions: ExtensionsConfig{
			HotReload: HotReloadConfig{
				Enable:        false,
				WatchInterval: 30 * time.Second,
			},
		},
		Extra: make(map[string]interface{}),
	}
}

// LoadFromFile loads configuration from a YAML or JSON file.
// Values missing from the file keep their defaults.
//
// LoadFromFile 从YAML或JSON文件加载配置。
// 文件中缺失的值保留默认值。
//
// Parameters:
//   - filename: Path to the configuration file
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if the file cannot be read or decoded
func LoadFromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported configuration file format: %s", ext)
	}

	return LoadFromReader(file, strings.TrimPrefix(ext, "."))
}

// LoadFromReader loads configuration from a reader in the given format.
//
// LoadFromReader 从读取器中按给定格式加载配置。
//
// Parameters:
//   - r: The reader to decode
//   - format: "yaml", "yml" or "json"
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if decoding fails
func LoadFromReader(r io.Reader, format string) (*Config, error) {
	config := DefaultConfig()
	var err error

	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(config)
	case "json":
		err = json.NewDecoder(r).Decode(config)
	default:
		return nil, fmt.Errorf("unsupported configuration format: %s", format)
	}

	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return config, nil
}

// SaveToFile writes the configuration to a YAML or JSON file.
//
// SaveToFile 将配置写入YAML或JSON文件。
func (c *Config) SaveToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".yaml", ".yml":
		encoder := yaml.NewEncoder(file)
		defer encoder.Close()
		err = encoder.Encode(c)
	case ".json":
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(c)
	default:
		return fmt.Errorf("unsupported configuration file format: %s", ext)
	}

	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	return nil
}

// Validate checks the configuration for invalid values.
//
// Validate 检查配置中的无效值。
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.gin_mode must be one of: debug, release, test")
	}

	if c.Codec.CompressionLevel < -2 || c.Codec.CompressionLevel > 9 {
		return fmt.Errorf("codec.compression_level must be between -2 and 9")
	}
	if c.Codec.MaxDecompressedBytes < 0 {
		return fmt.Errorf("codec.max_decompressed_bytes must be non-negative")
	}

	if c.Metrics.Enable {
		switch c.Metrics.Level {
		case "disabled", "basic", "detailed":
		default:
			return fmt.Errorf("metrics.level must be one of: disabled, basic, detailed")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with '/'")
		}
		if c.Metrics.HistogramBuckets <= 0 {
			return fmt.Errorf("metrics.histogram_buckets must be positive")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json", "auto":
	default:
		return fmt.Errorf("log.format must be one of: text, json, auto")
	}
	switch c.Log.Output {
	case "stdout", "stderr", "file":
	default:
		return fmt.Errorf("log.output must be one of: stdout, stderr, file")
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log.file_path must be specified when log.output is 'file'")
	}

	// Zero selects file system notifications instead of polling.
	if interval := c.Extensions.HotReload.WatchInterval; interval != 0 && interval < time.Second {
		return fmt.Errorf("extensions.hot_reload.watch_interval must be 0 or at least 1 second")
	}

	return nil
}
