// Package audit appends security-relevant events to a JSON-lines file.
package audit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"portfolio/internal/models"
	"portfolio/pkg/logger"

	"github.com/rs/zerolog"
)

// Actions recorded in the audit log.
const (
	ActionSignup            = "signup"
	ActionLogin             = "login"
	ActionLoginFailed       = "login_failed"
	ActionLoginLocked       = "login_locked"
	ActionLogout            = "logout"
	ActionMessageSent       = "message_sent"
	ActionAdminAccessDenied = "admin_access_denied"
	ActionProjectSaved      = "project_saved"
	ActionProjectDeleted    = "project_deleted"
	ActionFileUploaded      = "file_uploaded"
)

// Logger writes one JSON object per line. Failures are reported on the
// process log and never returned to the caller. A nil Logger discards events.
type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New creates a Logger appending to path.
func New(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Log records action performed from ip by identity (which may be nil).
func (l *Logger) Log(ip string, identity *models.Identity, action string, details map[string]any) {
	if l == nil {
		return
	}
	if details == nil {
		details = map[string]any{}
	}

	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	event := zl.Log().
		Str("timestamp", l.now().UTC().Format(time.RFC3339Nano)).
		Str("ip", ip)
	if identity != nil {
		event = event.Str("userId", identity.ID).Str("userEmail", identity.Email)
	} else {
		event = event.Interface("userId", nil).Interface("userEmail", nil)
	}
	event.Str("action", action).Interface("details", details).Send()

	if err := l.append(buf.Bytes()); err != nil {
		logger.Error().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

func (l *Logger) append(line []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create audit directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
