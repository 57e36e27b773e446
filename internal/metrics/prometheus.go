package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
)

const (
	// 默认的Prometheus指标前缀
	defaultMetricPrefix = "encdec"

	// ContentType is the Prometheus text exposition format.
	ContentType = "text/plain; version=0.0.4; charset=utf-8"
)

// PrometheusExporter 将编解码指标导出为Prometheus文本格式
type PrometheusExporter struct {
	// 指标收集器引用
	metrics *Metrics

	// 指标前缀
	prefix string

	// 实例名称，用于标签
	instance string

	mu sync.Mutex
}

// NewPrometheusExporter 创建一个新的Prometheus导出器
func NewPrometheusExporter(metrics *Metrics, instance string) *PrometheusExporter {
	return &PrometheusExporter{
		metrics:  metrics,
		prefix:   defaultMetricPrefix,
		instance: instance,
	}
}

// SetPrefix 设置指标前缀
func (p *PrometheusExporter) SetPrefix(prefix string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prefix = prefix
}

// Export 导出Prometheus格式的指标，禁用时返回空字符串
func (p *PrometheusExporter) Export() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := p.metrics.GetSnapshot()
	if snapshot == nil {
		return ""
	}

	var buf bytes.Buffer
	base := fmt.Sprintf(`instance="%s"`, p.instance)

	p.addCounter(&buf, "encodes_total", "Total number of encode runs", snapshot.Encodes, base)
	p.addCounter(&buf, "decodes_total", "Total number of decode runs", snapshot.Decodes, base)
	p.addCounter(&buf, "compressed_total", "Total number of runs with compression", snapshot.Compressed, base)
	p.addCounter(&buf, "empty_inputs_total", "Total number of requests with empty input", snapshot.Empty, base)

	p.addCounter(&buf, "failures_total", "Total number of failed runs", snapshot.Failures, base)
	for _, kind := range snapshot.Kinds() {
		labels := fmt.Sprintf(`%s,kind="%s"`, base, kind)
		p.addCounter(&buf, "failures_by_kind_total", "Failed runs by error kind", snapshot.FailuresByKind[kind], labels)
	}

	p.addCounter(&buf, "input_bytes_total", "Total input bytes of finished runs", snapshot.BytesIn, base)
	p.addCounter(&buf, "output_bytes_total", "Total output bytes of successful runs", snapshot.BytesOut, base)

	p.addGauge(&buf, "latency_avg_ns", "Average run latency in nanoseconds", float64(snapshot.LatencyAvg), base)

	if snapshot.LatencyHistogram != nil {
		p.addHistogram(&buf, "latency_ns", "Run latency histogram in nanoseconds", snapshot.LatencyHistogram, base)
	}

	return buf.String()
}

// addCounter 添加计数器类型指标
func (p *PrometheusExporter) addCounter(buf *bytes.Buffer, name, help string, value uint64, labels string) {
	metricName := fmt.Sprintf("%s_%s", p.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", metricName)
	fmt.Fprintf(buf, "%s{%s} %d\n\n", metricName, labels, value)
}

// addGauge 添加仪表类型指标
func (p *PrometheusExporter) addGauge(buf *bytes.Buffer, name, help string, value float64, labels string) {
	metricName := fmt.Sprintf("%s_%s", p.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", metricName)
	fmt.Fprintf(buf, "%s{%s} %g\n\n", metricName, labels, value)
}

// addHistogram 添加直方图类型指标
func (p *PrometheusExporter) addHistogram(buf *bytes.Buffer, name, help string, histogram *HistogramSnapshot, labels string) {
	metricName := fmt.Sprintf("%s_%s", p.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", metricName)

	// 累积桶
	cumulative := uint64(0)
	for i, count := range histogram.BucketCounts {
		cumulative += count
		fmt.Fprintf(buf, "%s_bucket{%s,le=\"%d\"} %d\n", metricName, labels, histogram.BucketBounds[i], cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{%s,le=\"+Inf\"} %d\n", metricName, labels, histogram.Count)

	fmt.Fprintf(buf, "%s_sum{%s} %d\n", metricName, labels, histogram.Sum)
	fmt.Fprintf(buf, "%s_count{%s} %d\n\n", metricName, labels, histogram.Count)
}

// ServeHTTP 实现http.Handler接口，用于提供Prometheus指标端点
func (p *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := p.Export()
	if body == "" {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", ContentType)
	w.Write([]byte(body))
}
