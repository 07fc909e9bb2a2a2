package metrics

// FTPMetrics records honeypot activity: sessions, login attempts, uploads,
// emitted events, and VirusTotal scans.
//
// A nil FTPMetrics is valid and records nothing; use the package-level
// helpers to observe through a possibly-nil instance.
type FTPMetrics interface {
	// SessionStarted records an accepted control connection.
	SessionStarted()

	// SessionEnded records a closed control connection.
	SessionEnded()

	// SessionRejected records a connection turned away at the concurrency cap.
	SessionRejected()

	// LoginAttempt records one PASS attempt.
	LoginAttempt()

	// LoginAccepted records an admitted login.
	LoginAccepted()

	// FileUploaded records a completed STOR transfer.
	FileUploaded()

	// EventSent records an event POST to the collector by outcome ("ok", "error").
	EventSent(status string)

	// ScanCompleted records a VirusTotal lookup by outcome
	// ("found", "not_found", "rate_limited", "error").
	ScanCompleted(result string)
}

// newPrometheusFTPMetrics is implemented in pkg/metrics/prometheus/ftp.go.
// This indirection avoids import cycles while keeping the API clean.
var newPrometheusFTPMetrics func() FTPMetrics

// RegisterFTPMetricsConstructor registers the Prometheus FTP metrics
// constructor. Called by pkg/metrics/prometheus during package initialization.
func RegisterFTPMetricsConstructor(constructor func() FTPMetrics) {
	newPrometheusFTPMetrics = constructor
}

// NewFTPMetrics creates a new Prometheus-backed FTPMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewFTPMetrics() FTPMetrics {
	if !IsEnabled() || newPrometheusFTPMetrics == nil {
		return nil
	}
	return newPrometheusFTPMetrics()
}

// SessionStarted records an accepted control connection.
func SessionStarted(m FTPMetrics) {
	if m != nil {
		m.SessionStarted()
	}
}

// SessionEnded records a closed control connection.
func SessionEnded(m FTPMetrics) {
	if m != nil {
		m.SessionEnded()
	}
}

// SessionRejected records a connection turned away at the concurrency cap.
func SessionRejected(m FTPMetrics) {
	if m != nil {
		m.SessionRejected()
	}
}

// LoginAttempt records one PASS attempt.
func LoginAttempt(m FTPMetrics) {
	if m != nil {
		m.LoginAttempt()
	}
}

// LoginAccepted records an admitted login.
func LoginAccepted(m FTPMetrics) {
	if m != nil {
		m.LoginAccepted()
	}
}

// FileUploaded records a completed STOR transfer.
func FileUploaded(m FTPMetrics) {
	if m != nil {
		m.FileUploaded()
	}
}

// EventSent records an event POST to the collector by outcome.
func EventSent(m FTPMetrics, status string) {
	if m != nil {
		m.EventSent(status)
	}
}

// ScanCompleted records a VirusTotal lookup by outcome.
func ScanCompleted(m FTPMetrics, result string) {
	if m != nil {
		m.ScanCompleted(result)
	}
}
