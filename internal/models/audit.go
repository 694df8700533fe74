package models

import "time"

// AuditEntry is one line of the security audit log.
type AuditEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	IP        string         `json:"ip"`
	UserID    *string        `json:"userId"`
	UserEmail *string        `json:"userEmail"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
}
