package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType names one auditable CRM action.
type AuditEventType string

const (
	AuditLoginSuccess  AuditEventType = "login_success"
	AuditLoginFailure  AuditEventType = "login_failure"
	AuditLogout        AuditEventType = "logout"
	AuditClientCreate  AuditEventType = "client_create"
	AuditUserCreate    AuditEventType = "user_create"
	AuditUserDelete    AuditEventType = "user_delete"
	AuditGuardBlock    AuditEventType = "guard_block"
	AuditAccessDenied  AuditEventType = "access_denied"
	AuditExportWritten AuditEventType = "export_written"
	AuditAIRequest     AuditEventType = "ai_request"
	AuditAIError       AuditEventType = "ai_error"
)

// AuditEvent is one JSON line of the audit trail. Never carries credentials.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`
	EventType  AuditEventType         `json:"event"`
	SessionID  string                 `json:"session,omitempty"`
	Actor      string                 `json:"actor,omitempty"`
	Target     string                 `json:"target,omitempty"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

var (
	auditFile *os.File
	auditMu   sync.Mutex
)

// AuditLogger stamps events with the session correlation id and actor.
type AuditLogger struct {
	sessionID string
	actor     string
}

// InitAudit opens the audit log. No-op outside debug mode.
func InitAudit() error {
	if !IsDebugMode() || logsDir == "" {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file
	return nil
}

// CloseAudit closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns an unscoped audit logger.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithSession creates an audit logger scoped to a session and actor.
func AuditWithSession(sessionID, actor string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID, actor: actor}
}

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" {
		event.SessionID = a.sessionID
	}
	if event.Actor == "" {
		event.Actor = a.actor
	}

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.Write(append(data, '\n'))
	}
}

// Event is shorthand for a successful or failed event on a target.
func (a *AuditLogger) Event(eventType AuditEventType, target string, success bool) {
	a.Log(AuditEvent{EventType: eventType, Target: target, Success: success})
}

// Failure records a failed event with its error.
func (a *AuditLogger) Failure(eventType AuditEventType, target string, err error) {
	ev := AuditEvent{EventType: eventType, Target: target}
	if err != nil {
		ev.Error = err.Error()
	}
	a.Log(ev)
}
