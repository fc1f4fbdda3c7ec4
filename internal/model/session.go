package model

// DeviceRecord is one normalized row of the remote device/session list. The
// server does not guarantee consistent field names, so records are built by
// internal/remote from whichever candidate fields are present.
type DeviceRecord struct {
	ID            string `json:"id"`
	SessionID     string `json:"session_id"`
	Blocked       bool   `json:"blocked"`
	BlockedReason string `json:"blocked_reason,omitempty"`
	Current       bool   `json:"current"`
	LastActive    int64  `json:"last_active,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	IP            string `json:"ip,omitempty"`
}

// DeviceList is the outcome of one device-list poll.
type DeviceList struct {
	Records []DeviceRecord `json:"records"`
	// CurrentID is the server-supplied current-device hint, when present.
	CurrentID string `json:"current_id,omitempty"`
	// CurrentHinted distinguishes "server sent no hint" from an empty hint.
	CurrentHinted bool `json:"current_hinted,omitempty"`
}

// LoginResult carries whatever the login endpoint could be coaxed into
// providing.
type LoginResult struct {
	Token  string `json:"token"`
	Role   string `json:"role,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// Profile is the best-effort cached copy of the authenticated user, used as a
// degraded fallback when the remote API is unreachable.
type Profile struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone"`
	Role   string `json:"role,omitempty"`
}
