package appointments

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

// AuditEntry is one line of the booking audit log. Every booking attempt is
// recorded regardless of email outcome, so an operator can recover a lost
// booking from the log even when delivery fails.
type AuditEntry struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointmentId,omitempty"`
	ParentName    string    `json:"parentName,omitempty"`
	Email         string    `json:"email,omitempty"`
	ChildName     string    `json:"childName,omitempty"`
	ServiceType   string    `json:"serviceType,omitempty"`
	Outcome       string    `json:"outcome,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// AuditLog appends booking attempts to a file, one JSON object per line.
type AuditLog struct {
	mu     sync.Mutex
	path   string
	logger *logging.Logger
}

// NewAuditLog creates an audit log writing to path. An empty path disables
// the log; Record becomes a no-op.
func NewAuditLog(path string, logger *logging.Logger) *AuditLog {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuditLog{path: path, logger: logger}
}

// Record appends one entry. Write failures are logged, never propagated: the
// audit log must not block the booking flow.
func (a *AuditLog) Record(entry AuditEntry) {
	if a == nil || a.path == "" {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		a.logger.Error("audit: marshal entry failed", "error", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		a.logger.Error("audit: open log file failed", "error", err, "path", a.path)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		a.logger.Error("audit: write entry failed", "error", err, "path", a.path)
	}
}
