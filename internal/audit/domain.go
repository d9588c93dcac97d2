// Package audit records every security-relevant action as an immutable,
// security-classified event in an append-only store. Writing is never
// gated by permissions so denied and failed attempts are always
// captured; reading the trail back requires audit:view.
package audit

import (
	"time"
)

// SecurityLevel classifies how sensitive an audit event is.
type SecurityLevel string

const (
	// SecurityInternal is the default classification.
	SecurityInternal SecurityLevel = "internal"
	// SecurityConfidential covers consent collection and data exports.
	SecurityConfidential SecurityLevel = "confidential"
	// SecurityRestricted covers destructive or privilege-changing events.
	SecurityRestricted SecurityLevel = "restricted"
)

// EventType names the kind of action an event records. Modules should
// use the catalog below; unknown types classify as internal.
type EventType string

const (
	EventLogin              EventType = "login"
	EventLogout             EventType = "logout"
	EventAccessGranted      EventType = "access_granted"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventRecordCreate       EventType = "record_create"
	EventRecordUpdate       EventType = "record_update"
	EventRecordDelete       EventType = "record_delete"
	EventPermissionGrant    EventType = "permission_grant"
	EventPermissionRevoke   EventType = "permission_revoke"
	EventSessionRevoke      EventType = "session_revoke"
	EventSettingsChange     EventType = "settings_change"
	EventConsentCollected   EventType = "consent_collected"
	EventDataExport         EventType = "data_export"
)

// classification is the fixed eventType → SecurityLevel table. Same type
// in, same level out, always.
var classification = map[EventType]SecurityLevel{
	EventRecordDelete:       SecurityRestricted,
	EventSessionRevoke:      SecurityRestricted,
	EventUnauthorizedAccess: SecurityRestricted,
	EventSettingsChange:     SecurityRestricted,
	EventPermissionGrant:    SecurityRestricted,
	EventPermissionRevoke:   SecurityRestricted,
	EventConsentCollected:   SecurityConfidential,
	EventDataExport:         SecurityConfidential,
}

// Classify returns the security level for an event type.
func Classify(t EventType) SecurityLevel {
	if level, ok := classification[t]; ok {
		return level
	}
	return SecurityInternal
}

// Event is one immutable audit record. Events are fully constructed
// before they reach a store and never mutated afterwards.
type Event struct {
	ID            string         `json:"id"`
	Type          EventType      `json:"event_type"`
	UserID        string         `json:"user_id"`
	UserRoles     []string       `json:"user_roles,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	ResourceType  string         `json:"resource_type,omitempty"`
	ResourceID    string         `json:"resource_id,omitempty"`
	Action        string         `json:"action"`
	Details       string         `json:"details,omitempty"`
	IPAddress     string         `json:"ip_address,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	Success       bool           `json:"success"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	SecurityLevel SecurityLevel  `json:"security_level"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Filter narrows an audit query. Zero-valued fields are ignored; set
// fields combine conjunctively.
type Filter struct {
	Type         EventType
	UserID       string
	ResourceType string
	ResourceID   string
	From         time.Time
	To           time.Time
}

// Matches reports whether an event satisfies every set filter field.
func (f Filter) Matches(ev Event) bool {
	if f.Type != "" && ev.Type != f.Type {
		return false
	}
	if f.UserID != "" && ev.UserID != f.UserID {
		return false
	}
	if f.ResourceType != "" && ev.ResourceType != f.ResourceType {
		return false
	}
	if f.ResourceID != "" && ev.ResourceID != f.ResourceID {
		return false
	}
	if !f.From.IsZero() && ev.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ev.Timestamp.After(f.To) {
		return false
	}
	return true
}
