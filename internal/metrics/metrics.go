// Package metrics provides runtime metrics collection, statistics, and reporting
// for the encode/decode service.
// Package metrics 提供编解码服务的运行时指标采集、统计和输出功能。
//
// Counters are updated atomically so that recording has minimal impact on the
// request path. The Basic level counts runs, failures and bytes; the Detailed
// level additionally records a latency distribution.
//
// 计数器以原子方式更新，对请求路径的影响最小。Basic级别统计运行次数、
// 失败次数和字节数；Detailed级别额外记录延迟分布。
package metrics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	encerrors "github.com/yourusername/encdec/pkg/errors"
)

// Level defines the metrics collection level.
// Level 定义指标采集级别。
type Level int

const (
	// Disabled means metrics collection is turned off.
	// Disabled 表示禁用指标采集。
	Disabled Level = iota

	// Basic enables collection of run, failure and byte counters.
	// Basic 启用运行、失败和字节计数器。
	Basic

	// Detailed enables collection of the latency distribution as well.
	// Detailed 同时启用延迟分布采集。
	Detailed
)

// String returns the configuration name of the level.
func (l Level) String() string {
	switch l {
	case Disabled:
		return "disabled"
	case Basic:
		return "basic"
	case Detailed:
		return "detailed"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts disabled, basic or detailed to a Level.
//
// ParseLevel 将disabled、basic或detailed转换为Level。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off":
		return Disabled, nil
	case "basic", "":
		return Basic, nil
	case "detailed":
		return Detailed, nil
	default:
		return Disabled, fmt.Errorf("unknown metrics level %q", s)
	}
}

// Metrics is the encode/decode metrics collector.
// It uses atomic operations to ensure thread safety in high-concurrency environments.
//
// Metrics 是编解码指标收集器。
// 使用原子操作确保高并发环境下的线程安全。
type Metrics struct {
	// Collection level
	// 采集级别
	level int32

	// Run counters
	// 运行计数器
	encodes    uint64 // Encode runs / 编码次数
	decodes    uint64 // Decode runs / 解码次数
	compressed uint64 // Runs with compression enabled / 启用压缩的次数
	empty      uint64 // Requests rejected for empty input / 空输入次数

	// Failure counters
	// 失败计数器
	failures       uint64             // All classified failures / 所有失败次数
	failuresByKind map[string]*uint64 // Failures per error kind / 按错误类型的失败次数

	// Traffic counters
	// 流量计数器
	bytesIn  uint64 // Input bytes of finished runs / 已完成运行的输入字节数
	bytesOut uint64 // Output bytes of successful runs / 成功运行的输出字节数

	// Performance metrics
	// 性能指标
	latencySum   uint64 // Sum of run latencies (ns) / 运行延迟总和（纳秒）
	latencyCount uint64 // Count of timed runs / 计时的运行次数

	// Latency histogram
	// 延迟直方图
	latencyHistogram *Histogram

	// Last update timestamp
	// 最后更新时间
	lastUpdated int64

	// Mutex for protecting the kind map and the histogram pointer
	// 互斥锁，用于保护类型映射和直方图指针
	mu sync.RWMutex
}

// Config defines metrics configuration options.
// Config 定义指标配置选项。
type Config struct {
	// Level determines the detail level of metrics collection
	// Level 指定指标采集的详细程度
	Level Level

	// EnableLatencyHistogram enables latency histogram collection
	// EnableLatencyHistogram 启用延迟直方图收集
	EnableLatencyHistogram bool

	// HistogramBuckets specifies the number of buckets in the latency histogram
	// HistogramBuckets 指定延迟直方图中的桶数量
	HistogramBuckets int
}

// Observation describes one finished pipeline run.
//
// Observation 描述一次完成的管道运行。
type Observation struct {
	Mode       string
	Compressed bool
	Kind       encerrors.Kind
	BytesIn    int
	BytesOut   int
	Latency    time.Duration
}

// New creates a new metrics collector.
//
// New 创建一个新的指标收集器。
//
// Parameters:
//   - config: Configuration options for the metrics collector
//
// Returns:
//   - *Metrics: A new metrics collector instance
func New(config *Config) *Metrics {
	if config == nil {
		config = &Config{Level: Basic}
	}

	m := &Metrics{
		level:          int32(config.Level),
		failuresByKind: make(map[string]*uint64),
		lastUpdated:    time.Now().UnixNano(),
	}

	// Initialize latency histogram if enabled
	// 初始化延迟直方图（如果启用）
	if config.EnableLatencyHistogram && config.HistogramBuckets > 0 {
		m.latencyHistogram = NewHistogram(config.HistogramBuckets)
	}

	return m
}

// Observe records a finished run in every relevant counter.
//
// Observe 将一次完成的运行记录到所有相关计数器中。
func (m *Metrics) Observe(o Observation) {
	if m.GetLevel() == Disabled {
		return
	}

	if o.Kind == encerrors.KindEmptyInput {
		m.RecordEmpty()
		return
	}

	switch o.Mode {
	case "encode":
		atomic.AddUint64(&m.encodes, 1)
	case "decode":
		atomic.AddUint64(&m.decodes, 1)
	}
	if o.Compressed {
		atomic.AddUint64(&m.compressed, 1)
	}

	atomic.AddUint64(&m.bytesIn, uint64(o.BytesIn))
	if o.Kind == encerrors.KindNone {
		atomic.AddUint64(&m.bytesOut, uint64(o.BytesOut))
	} else {
		m.RecordFailure(o.Kind)
	}

	m.RecordLatency(o.Latency)
}

// RecordEmpty records a request rejected for empty input.
//
// RecordEmpty 记录因空输入被拒绝的请求。
func (m *Metrics) RecordEmpty() {
	if m.GetLevel() == Disabled {
		return
	}
	atomic.AddUint64(&m.empty, 1)
	m.touch()
}

// RecordFailure records a failed run of the given kind.
//
// RecordFailure 记录给定类型的失败运行。
func (m *Metrics) RecordFailure(kind encerrors.Kind) {
	if m.GetLevel() == Disabled {
		return
	}
	atomic.AddUint64(&m.failures, 1)

	name := kind.String()
	m.mu.RLock()
	counter, ok := m.failuresByKind[name]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		if counter, ok = m.failuresByKind[name]; !ok {
			counter = new(uint64)
			m.failuresByKind[name] = counter
		}
		m.mu.Unlock()
	}
	atomic.AddUint64(counter, 1)
	m.touch()
}

// RecordLatency records the duration of one run.
//
// RecordLatency 记录一次运行的耗时。
func (m *Metrics) RecordLatency(d time.Duration) {
	if m.GetLevel() == Disabled {
		return
	}
	ns := d.Nanoseconds()
	if ns < 0 {
		ns = 0
	}
	atomic.AddUint64(&m.latencySum, uint64(ns))
	atomic.AddUint64(&m.latencyCount, 1)

	if m.GetLevel() == Detailed {
		m.mu.RLock()
		h := m.latencyHistogram
		m.mu.RUnlock()
		if h != nil {
			h.RecordLatency(ns)
		}
	}
	m.touch()
}

func (m *Metrics) touch() {
	atomic.StoreInt64(&m.lastUpdated, time.Now().UnixNano())
}

// Reset 重置所有指标
func (m *Metrics) Reset() {
	atomic.StoreUint64(&m.encodes, 0)
	atomic.StoreUint64(&m.decodes, 0)
	atomic.StoreUint64(&m.compressed, 0)
	atomic.StoreUint64(&m.empty, 0)
	atomic.StoreUint64(&m.failures, 0)
	atomic.StoreUint64(&m.bytesIn, 0)
	atomic.StoreUint64(&m.bytesOut, 0)
	atomic.StoreUint64(&m.latencySum, 0)
	atomic.StoreUint64(&m.latencyCount, 0)
	atomic.StoreInt64(&m.lastUpdated, time.Now().UnixNano())

	m.mu.Lock()
	m.failuresByKind = make(map[string]*uint64)
	h := m.latencyHistogram
	m.mu.Unlock()

	// 重置直方图
	if h != nil {
		h.Reset()
	}
}

// GetLevel 获取当前指标采集级别
func (m *Metrics) GetLevel() Level {
	return Level(atomic.LoadInt32(&m.level))
}

// SetLevel 设置指标采集级别
func (m *Metrics) SetLevel(level Level) {
	atomic.StoreInt32(&m.level, int32(level))
}

// EnableLatencyHistogram 启用延迟直方图
func (m *Metrics) EnableLatencyHistogram(buckets int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.latencyHistogram == nil || m.latencyHistogram.GetBucketCount() != buckets+1 {
		m.latencyHistogram = NewHistogram(buckets)
	}
}

// DisableLatencyHistogram 禁用延迟直方图
func (m *Metrics) DisableLatencyHistogram() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latencyHistogram = nil
}

// GetSnapshot 获取指标快照，禁用时返回nil
func (m *Metrics) GetSnapshot() *Snapshot {
	level := m.GetLevel()
	if level == Disabled {
		return nil
	}

	latencyAvg := int64(0)
	if count := atomic.LoadUint64(&m.latencyCount); count > 0 {
		latencyAvg = int64(atomic.LoadUint64(&m.latencySum) / count)
	}

	snapshot := &Snapshot{
		Timestamp:   time.Now().UnixNano(),
		LastUpdated: atomic.LoadInt64(&m.lastUpdated),

		Encodes:    atomic.LoadUint64(&m.encodes),
		Decodes:    atomic.LoadUint64(&m.decodes),
		Compressed: atomic.LoadUint64(&m.compressed),
		Empty:      atomic.LoadUint64(&m.empty),

		Failures:       atomic.LoadUint64(&m.failures),
		FailuresByKind: make(map[string]uint64),

		BytesIn:  atomic.LoadUint64(&m.bytesIn),
		BytesOut: atomic.LoadUint64(&m.bytesOut),

		LatencyAvg: latencyAvg,
	}

	m.mu.RLock()
	for kind, counter := range m.failuresByKind {
		snapshot.FailuresByKind[kind] = atomic.LoadUint64(counter)
	}
	h := m.latencyHistogram
	m.mu.RUnlock()

	// 添加直方图数据
	if level == Detailed && h != nil {
		snapshot.LatencyHistogram = h.GetSnapshot()
	}

	return snapshot
}

// Snapshot 指标快照
type Snapshot struct {
	Timestamp   int64 `json:"timestamp"`
	LastUpdated int64 `json:"last_updated"`

	// 运行计数
	Encodes    uint64 `json:"encodes"`
	Decodes    uint64 `json:"decodes"`
	Compressed uint64 `json:"compressed"`
	Empty      uint64 `json:"empty"`

	// 失败计数
	Failures       uint64            `json:"failures"`
	FailuresByKind map[string]uint64 `json:"failures_by_kind"`

	// 流量
	BytesIn  uint64 `json:"bytes_in"`
	BytesOut uint64 `json:"bytes_out"`

	// 性能指标
	LatencyAvg int64 `json:"latency_avg_ns"`

	// 延迟直方图
	LatencyHistogram *HistogramSnapshot `json:"latency_histogram,omitempty"`
}

// Kinds returns the failure kinds in the snapshot in sorted order.
func (s *Snapshot) Kinds() []string {
	kinds := make([]string, 0, len(s.FailuresByKind))
	for kind := range s.FailuresByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// String 返回指标快照的JSON字符串表示
func (s *Snapshot) String() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
