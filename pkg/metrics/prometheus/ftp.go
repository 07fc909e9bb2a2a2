package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/ftpot/pkg/metrics"
)

// ftpMetrics is the Prometheus implementation of metrics.FTPMetrics.
type ftpMetrics struct {
	sessionsActive  prometheus.Gauge
	sessionsTotal   prometheus.Counter
	sessionsDropped prometheus.Counter
	loginAttempts   prometheus.Counter
	loginsAccepted  prometheus.Counter
	filesUploaded   prometheus.Counter
	eventsSent      *prometheus.CounterVec
	scans           *prometheus.CounterVec
}

func init() {
	metrics.RegisterFTPMetricsConstructor(newFTPMetrics)
}

// newFTPMetrics creates the Prometheus-backed FTPMetrics instance.
//
// Only called through metrics.NewFTPMetrics, after InitRegistry.
func newFTPMetrics() metrics.FTPMetrics {
	reg := metrics.GetRegistry()

	return &ftpMetrics{
		sessionsActive: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "ftpot_sessions_active",
				Help: "Number of currently open control connections",
			},
		),
		sessionsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "ftpot_sessions_total",
				Help: "Total number of accepted control connections",
			},
		),
		sessionsDropped: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "ftpot_sessions_rejected_total",
				Help: "Total number of connections turned away at the concurrency cap",
			},
		),
		loginAttempts: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "ftpot_login_attempts_total",
				Help: "Total number of PASS attempts",
			},
		),
		loginsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "ftpot_logins_accepted_total",
				Help: "Total number of admitted logins",
			},
		),
		filesUploaded: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "ftpot_files_uploaded_total",
				Help: "Total number of completed STOR transfers",
			},
		),
		eventsSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftpot_events_sent_total",
				Help: "Total number of events POSTed to the collector by outcome",
			},
			[]string{"status"}, // "ok", "error"
		),
		scans: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftpot_scans_total",
				Help: "Total number of VirusTotal lookups by outcome",
			},
			[]string{"result"}, // "found", "not_found", "rate_limited", "error"
		),
	}
}

func (m *ftpMetrics) SessionStarted() {
	m.sessionsActive.Inc()
	m.sessionsTotal.Inc()
}

func (m *ftpMetrics) SessionEnded() {
	m.sessionsActive.Dec()
}

func (m *ftpMetrics) SessionRejected() {
	m.sessionsDropped.Inc()
}

func (m *ftpMetrics) LoginAttempt() {
	m.loginAttempts.Inc()
}

func (m *ftpMetrics) LoginAccepted() {
	m.loginsAccepted.Inc()
}

func (m *ftpMetrics) FileUploaded() {
	m.filesUploaded.Inc()
}

func (m *ftpMetrics) EventSent(status string) {
	m.eventsSent.WithLabelValues(status).Inc()
}

func (m *ftpMetrics) ScanCompleted(result string) {
	m.scans.WithLabelValues(result).Inc()
}
