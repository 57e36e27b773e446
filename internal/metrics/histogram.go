package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Smallest and largest bucket bounds of a run latency histogram.
	// 运行延迟直方图的最小和最大桶边界。
	histogramMinLatency = 10 * time.Microsecond
	histogramMaxLatency = 30 * time.Second

	defaultHistogramBuckets = 10
)

// Histogram is a run latency histogram with logarithmic buckets.
// Recording uses atomic operations only.
//
// Histogram 是使用对数桶的运行延迟直方图。
// 记录操作只使用原子操作。
type Histogram struct {
	// 桶上界，单位为纳秒
	bucketBounds []int64
	// 桶计数
	bucketCounts []uint64
	// 总计数
	count uint64
	// 最小值
	min int64
	// 最大值
	max int64
	// 总和
	sum int64
	// 保护Reset与快照之间的一致性
	mu sync.RWMutex
}

// HistogramSnapshot 直方图快照
type HistogramSnapshot struct {
	BucketBounds []int64  `json:"bucket_bounds"`
	BucketCounts []uint64 `json:"bucket_counts"`
	Count        uint64   `json:"count"`
	Min          int64    `json:"min"`
	Max          int64    `json:"max"`
	Sum          int64    `json:"sum"`
	Mean         float64  `json:"mean"`
	P50          int64    `json:"p50"`
	P90          int64    `json:"p90"`
	P99          int64    `json:"p99"`
}

// NewHistogram creates a histogram with bucketCount+1 buckets whose upper
// bounds grow exponentially from 10µs to 30s. Values above the last bound
// land in the last bucket.
//
// NewHistogram 创建一个具有bucketCount+1个桶的直方图，桶上界从10微秒到30秒呈指数增长。
// 超过最后边界的值落入最后一个桶。
func NewHistogram(bucketCount int) *Histogram {
	if bucketCount <= 0 {
		bucketCount = defaultHistogramBuckets
	}

	lo := float64(histogramMinLatency.Nanoseconds())
	hi := float64(histogramMaxLatency.Nanoseconds())

	bucketBounds := make([]int64, bucketCount+1)
	for i := 0; i <= bucketCount; i++ {
		power := float64(i) / float64(bucketCount)
		bucketBounds[i] = int64(lo * math.Pow(hi/lo, power))
	}

	return &Histogram{
		bucketBounds: bucketBounds,
		bucketCounts: make([]uint64, bucketCount+1),
		min:          math.MaxInt64,
	}
}

// RecordLatency 记录一个延迟值（纳秒）
func (h *Histogram) RecordLatency(latencyNs int64) {
	if latencyNs < 0 {
		latencyNs = 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.updateStats(latencyNs)
	atomic.AddUint64(&h.bucketCounts[h.findBucket(latencyNs)], 1)
	atomic.AddUint64(&h.count, 1)
}

// Observe records a duration.
func (h *Histogram) Observe(d time.Duration) {
	h.RecordLatency(d.Nanoseconds())
}

func (h *Histogram) updateStats(latencyNs int64) {
	for {
		min := atomic.LoadInt64(&h.min)
		if latencyNs >= min || atomic.CompareAndSwapInt64(&h.min, min, latencyNs) {
			break
		}
	}

	for {
		max := atomic.LoadInt64(&h.max)
		if latencyNs <= max || atomic.CompareAndSwapInt64(&h.max, max, latencyNs) {
			break
		}
	}

	atomic.AddInt64(&h.sum, latencyNs)
}

// findBucket returns the first bucket whose bound is >= latencyNs.
func (h *Histogram) findBucket(latencyNs int64) int {
	i, j := 0, len(h.bucketBounds)-1
	for i < j {
		mid := (i + j) / 2
		if latencyNs > h.bucketBounds[mid] {
			i = mid + 1
		} else {
			j = mid
		}
	}
	return i
}

// Reset 重置直方图
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.bucketCounts {
		atomic.StoreUint64(&h.bucketCounts[i], 0)
	}

	atomic.StoreUint64(&h.count, 0)
	atomic.StoreInt64(&h.min, math.MaxInt64)
	atomic.StoreInt64(&h.max, 0)
	atomic.StoreInt64(&h.sum, 0)
}

// GetSnapshot 获取直方图快照
func (h *Histogram) GetSnapshot() *HistogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	bounds := make([]int64, len(h.bucketBounds))
	copy(bounds, h.bucketBounds)

	bucketCounts := h.loadCounts()
	count := atomic.LoadUint64(&h.count)
	if count == 0 {
		return &HistogramSnapshot{BucketBounds: bounds, BucketCounts: bucketCounts}
	}

	sum := atomic.LoadInt64(&h.sum)
	return &HistogramSnapshot{
		BucketBounds: bounds,
		BucketCounts: bucketCounts,
		Count:        count,
		Min:          atomic.LoadInt64(&h.min),
		Max:          atomic.LoadInt64(&h.max),
		Sum:          sum,
		Mean:         float64(sum) / float64(count),
		P50:          h.calculatePercentile(bucketCounts, 0.5),
		P90:          h.calculatePercentile(bucketCounts, 0.9),
		P99:          h.calculatePercentile(bucketCounts, 0.99),
	}
}

func (h *Histogram) loadCounts() []uint64 {
	counts := make([]uint64, len(h.bucketCounts))
	for i := range h.bucketCounts {
		counts[i] = atomic.LoadUint64(&h.bucketCounts[i])
	}
	return counts
}

// calculatePercentile interpolates linearly inside the bucket holding the
// target rank. The lower edge of the first bucket is zero.
//
// calculatePercentile 在包含目标排名的桶内进行线性插值。第一个桶的下边界为零。
func (h *Histogram) calculatePercentile(bucketCounts []uint64, percentile float64) int64 {
	if percentile < 0 || percentile > 1 {
		return 0
	}

	total := uint64(0)
	for _, c := range bucketCounts {
		total += c
	}
	if total == 0 {
		return 0
	}

	target := uint64(math.Ceil(float64(total) * percentile))
	if target == 0 {
		target = 1
	}

	cumulative := uint64(0)
	for i, c := range bucketCounts {
		if c == 0 {
			continue
		}
		if cumulative+c >= target {
			lower := int64(0)
			if i > 0 {
				lower = h.bucketBounds[i-1]
			}
			upper := h.bucketBounds[i]
			position := float64(target-cumulative) / float64(c)
			return lower + int64(float64(upper-lower)*position)
		}
		cumulative += c
	}

	return h.bucketBounds[len(h.bucketBounds)-1]
}

// GetBucketCount 获取桶数量
func (h *Histogram) GetBucketCount() int {
	return len(h.bucketCounts)
}

// GetBucketBounds 获取桶边界
func (h *Histogram) GetBucketBounds() []int64 {
	bounds := make([]int64, len(h.bucketBounds))
	copy(bounds, h.bucketBounds)
	return bounds
}

// GetCount 获取总计数
func (h *Histogram) GetCount() uint64 {
	return atomic.LoadUint64(&h.count)
}

// GetMean 获取平均值
func (h *Histogram) GetMean() float64 {
	count := atomic.LoadUint64(&h.count)
	if count == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&h.sum)) / float64(count)
}

// GetPercentile 获取指定百分位数
func (h *Histogram) GetPercentile(percentile float64) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.calculatePercentile(h.loadCounts(), percentile)
}
