package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Lark 上游调用数
	larkRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lark_requests_total",
			Help: "Total number of Lark Base API calls",
		},
		[]string{"operation", "status"},
	)

	// Xero 上游调用数
	xeroRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xero_requests_total",
			Help: "Total number of Xero API calls",
		},
		[]string{"operation", "status"},
	)

	// Xero 同步落库行数
	xeroSyncRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xero_sync_rows_total",
			Help: "Total number of report rows mirrored to the database",
		},
		[]string{"report"}, // balance_sheet, profit_loss
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)
)

var (
	once sync.Once
)

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(larkRequestsTotal)
	prometheus.MustRegister(xeroRequestsTotal)
	prometheus.MustRegister(xeroSyncRowsTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)

	// 注册 Go 运行时指标（只注册一次）
	once.Do(func() {
		// 尝试注册 Go 运行时指标，如果已注册则忽略错误
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordLarkRequest 记录 Lark 上游调用,status 0 表示网络错误
func RecordLarkRequest(operation string, status int) {
	larkRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

// RecordXeroRequest 记录 Xero 上游调用,status 0 表示网络错误
func RecordXeroRequest(operation string, status int) {
	xeroRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

// RecordSyncRows 记录同步落库的报表行数
func RecordSyncRows(report string, rows int) {
	xeroSyncRowsTotal.WithLabelValues(report).Add(float64(rows))
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}
