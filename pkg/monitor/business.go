package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	WalletsCreatedTotal      *prometheus.CounterVec
	PaymentsBroadcastTotal   *prometheus.CounterVec
	PaymentsFailedTotal      *prometheus.CounterVec
	CredentialRotationsTotal prometheus.Counter
	WalletLockContention     prometheus.Counter
	BroadcastDuration        *prometheus.HistogramVec
}

// Global Metrics Instance
var Business *BusinessMetrics

func init() {
	initBusinessMetrics()
}

// initBusinessMetrics 初始化业务指标 (promauto 注册到默认 Registry)
func initBusinessMetrics() {
	Business = &BusinessMetrics{
		WalletsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_created_total",
			Help: "Total number of custodial wallets created",
		}, []string{"chain"}),
		PaymentsBroadcastTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_payments_broadcast_total",
			Help: "Total number of outbound payments broadcast",
		}, []string{"chain"}),
		PaymentsFailedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_payments_failed_total",
			Help: "Total number of outbound payments that failed",
		}, []string{"chain", "reason"}),
		CredentialRotationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_credential_rotations_total",
			Help: "Times a gateway credential was rejected and the next one tried",
		}),
		WalletLockContention: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_lock_contention_total",
			Help: "Payment attempts rejected because the wallet lock was held",
		}),
		BroadcastDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wallet_broadcast_duration_seconds",
			Help:    "Duration of the select-sign-broadcast span",
			Buckets: prometheus.DefBuckets,
		}, []string{"chain"}),
	}
}
