// Package audit provides security audit logging for SIEM consumption.
// Rejected queries are logged as structured JSON events under a dedicated
// logger name so they can be filtered and alerted on.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/auth"
	"github.com/ekaya-inc/aria-engine/pkg/logging"
	sqlpkg "github.com/ekaya-inc/aria-engine/pkg/sql"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags a string literal.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventUnsafeQuery is logged when the guard rejects a write, DDL or multi-statement query.
	EventUnsafeQuery SecurityEventType = "unsafe_query_rejected"
)

// SecurityEvent is one auditable event.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Details   RejectionDetails  `json:"details"`
	Severity  string            `json:"severity"` // warning, critical
}

// RejectionDetails describes a query the SQL guard refused.
type RejectionDetails struct {
	Reason      string `json:"reason"`
	Fingerprint string `json:"fingerprint,omitempty"` // libinjection fingerprint for pattern analysis
	Query       string `json:"query"`
}

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a security auditor under the "security_audit" logger name.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogRejectedQuery records a guard rejection. Injection hits are logged at
// ERROR with critical severity; other rejections at WARN. Errors that are not
// guard rejections are ignored.
//
// The user and request IDs come from ctx when the request was authenticated
// and passed through the request ID middleware.
func (a *SecurityAuditor) LogRejectedQuery(ctx context.Context, query string, err error) {
	var unsafe *sqlpkg.UnsafeQueryError
	if !errors.As(err, &unsafe) {
		return
	}

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventUnsafeQuery,
		RequestID: chimw.GetReqID(ctx),
		UserID:    auth.UserID(ctx),
		Details: RejectionDetails{
			Reason:      unsafe.Reason,
			Fingerprint: unsafe.Fingerprint,
			Query:       logging.SanitizeQuery(query),
		},
		Severity: "warning",
	}
	level := zap.WarnLevel
	msg := "Unsafe query rejected"
	if unsafe.Fingerprint != "" {
		event.EventType = EventSQLInjectionAttempt
		event.Severity = "critical"
		level = zap.ErrorLevel
		msg = "SQL injection attempt detected"
	}

	// Marshaling known types cannot fail.
	eventJSON, _ := json.Marshal(event)

	a.logger.Log(level, msg,
		zap.String("event_json", string(eventJSON)),
		zap.String("event_type", string(event.EventType)),
		zap.String("reason", unsafe.Reason),
		zap.String("fingerprint", unsafe.Fingerprint),
		zap.String("request_id", event.RequestID),
		zap.String("user_id", event.UserID),
		zap.String("severity", event.Severity),
	)
}
