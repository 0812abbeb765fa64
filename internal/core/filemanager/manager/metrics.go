package manager

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ============================================================================
//                          Prometheus 监控指标
// ============================================================================

var (
	// opsTotal 注册表操作次数（按操作与结果分类）
	opsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storagehub",
			Subsystem: "file_manager",
			Name:      "operations_total",
			Help:      "Total number of file registry operations by operation and result.",
		},
		[]string{"op", "result"}, // success, error
	)

	// opDuration 注册表操作耗时
	opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storagehub",
			Subsystem: "file_manager",
			Name:      "operation_duration_seconds",
			Help:      "Duration of file registry operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms ~ 26s
		},
		[]string{"op"},
	)

	// chunkBytesWritten 成功写入的分块字节数
	chunkBytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storagehub",
		Subsystem: "file_manager",
		Name:      "chunk_bytes_written_total",
		Help:      "Total bytes of chunks accepted by the file registry.",
	})

	// filesCompleted 进入完整状态的文件数
	filesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storagehub",
		Subsystem: "file_manager",
		Name:      "files_completed_total",
		Help:      "Total number of files whose last chunk matched the fingerprint.",
	})

	// criticalErrors 指纹不一致等不应出现的错误
	criticalErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storagehub",
		Subsystem: "file_manager",
		Name:      "critical_errors_total",
		Help:      "Total number of fingerprint mismatches and other critical registry errors.",
	})
)

// ============================================================================
//                          指标注册
// ============================================================================

func init() {
	prometheus.MustRegister(
		opsTotal,
		opDuration,
		chunkBytesWritten,
		filesCompleted,
		criticalErrors,
	)
}

// observe 记录一次操作的耗时与结果
func observe(op string, start time.Time, err error) {
	opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	result := "success"
	if err != nil {
		result = "error"
	}
	opsTotal.WithLabelValues(op, result).Inc()
}
