// This file contains tests for the configuration functionality.
//
// 本文件包含配置功能的测试。
package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that DefaultConfig returns a properly initialized Config
// with the expected default values for important settings.
//
// TestDefaultConfig 验证DefaultConfig返回一个正确初始化的Config，
// 包含重要设置的预期默认值。
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Test default values
	// 测试默认值
	if config.Server.Address != ":8080" {
		t.Errorf("Expected Server.Address to be ':8080', got '%s'", config.Server.Address)
	}
	if !config.Codec.CompressByDefault {
		t.Error("Expected Codec.CompressByDefault to be true")
	}
	if config.Codec.CompressionLevel != -1 {
		t.Errorf("Expected Codec.CompressionLevel to be -1, got %d", config.Codec.CompressionLevel)
	}
	if config.Metrics.Path != "/metrics" {
		t.Errorf("Expected Metrics.Path to be '/metrics', got '%s'", config.Metrics.Path)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid, got: %v", err)
	}
}

// TestLoadAndSaveConfig tests the ability to save and load configuration
// to and from files in both YAML and JSON formats.
//
// TestLoadAndSaveConfig 测试将配置保存到文件和从文件加载配置的能力，
// 包括YAML和JSON两种格式。
func TestLoadAndSaveConfig(t *testing.T) {
	tempDir := t.TempDir()

	for _, name := range []string{"config.yaml", "config.json"} {
		path := filepath.Join(tempDir, name)
		config := DefaultConfig()
		config.Server.Address = "127.0.0.1:9090"
		config.Server.ReadTimeout = 3 * time.Second
		config.Codec.CompressionLevel = 9
		config.Log.Format = "json"

		// Save config
		// 保存配置
		if err := config.SaveToFile(path); err != nil {
			t.Fatalf("Failed to save %s: %v", name, err)
		}

		// Load config
		// 加载配置
		loaded, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", name, err)
		}

		// Verify loaded config
		// 验证加载的配置
		if loaded.Server.Address != "127.0.0.1:9090" {
			t.Errorf("%s: expected Server.Address '127.0.0.1:9090', got '%s'", name, loaded.Server.Address)
		}
		if loaded.Server.ReadTimeout != 3*time.Second {
			t.Errorf("%s: expected Server.ReadTimeout 3s, got %s", name, loaded.Server.ReadTimeout)
		}
		if loaded.Codec.CompressionLevel != 9 {
			t.Errorf("%s: expected Codec.CompressionLevel 9, got %d", name, loaded.Codec.CompressionLevel)
		}
		if loaded.Log.Format != "json" {
			t.Errorf("%s: expected Log.Format 'json', got '%s'", name, loaded.Log.Format)
		}
	}
}

// TestLoadFromFileErrors checks missing files and unsupported extensions.
func TestLoadFromFileErrors(t *testing.T) {
	tempDir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(tempDir, "missing.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}

	tomlPath := filepath.Join(tempDir, "config.toml")
	if err := os.WriteFile(tomlPath, []byte("x = 1"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := LoadFromFile(tomlPath); err == nil {
		t.Error("Expected error for an unsupported format")
	}

	if err := DefaultConfig().SaveToFile(tomlPath); err == nil {
		t.Error("Expected error when saving to an unsupported format")
	}
}

// TestLoadFromReaderPartial verifies that keys missing from the input keep
// their defaults, and that an empty document is accepted.
func TestLoadFromReaderPartial(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("codec:\n  compress_by_default: false\n"), "yaml")
	if err != nil {
		t.Fatalf("Failed to load partial config: %v", err)
	}
	if config.Codec.CompressByDefault {
		t.Error("Expected Codec.CompressByDefault to be false")
	}
	if config.Server.Address != ":8080" {
		t.Errorf("Expected default Server.Address, got '%s'", config.Server.Address)
	}

	if _, err := LoadFromReader(strings.NewReader(""), "yaml"); err != nil {
		t.Errorf("Empty YAML should load defaults, got: %v", err)
	}

	if _, err := LoadFromReader(strings.NewReader("{"), "json"); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	if _, err := LoadFromReader(strings.NewReader(""), "ini"); err == nil {
		t.Error("Expected error for an unsupported format")
	}
}

// TestValidate checks each rejected setting.
//
// TestValidate 检查每个被拒绝的设置。
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }},
		{"negative shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"unknown gin mode", func(c *Config) { c.Server.GinMode = "loud" }},
		{"level too low", func(c *Config) { c.Codec.CompressionLevel = -3 }},
		{"level too high", func(c *Config) { c.Codec.CompressionLevel = 10 }},
		{"negative decompressed limit", func(c *Config) { c.Codec.MaxDecompressedBytes = -1 }},
		{"unknown metrics level", func(c *Config) { c.Metrics.Level = "verbose" }},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
		{"zero buckets", func(c *Config) { c.Metrics.HistogramBuckets = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"unknown log output", func(c *Config) { c.Log.Output = "syslog" }},
		{"file output without path", func(c *Config) { c.Log.Output = "file"; c.Log.FilePath = "" }},
		{"short watch interval", func(c *Config) { c.Extensions.HotReload.WatchInterval = 10 * time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}

	// Metrics settings are not checked while metrics are disabled
	// 禁用指标时不检查指标设置
	config := DefaultConfig()
	config.Metrics.Enable = false
	config.Metrics.Level = "verbose"
	if err := config.Validate(); err != nil {
		t.Errorf("Expected disabled metrics to skip checks, got: %v", err)
	}

	config = DefaultConfig()
	config.Extensions.HotReload.WatchInterval = 0
	if err := config.Validate(); err != nil {
		t.Errorf("Expected zero watch interval to be valid, got: %v", err)
	}
}
