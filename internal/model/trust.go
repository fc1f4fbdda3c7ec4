package model

// TrustState is the reconciler's conclusion about this device.
type TrustState int

const (
	// TrustNormal: last poll found the current device present and unblocked.
	TrustNormal TrustState = iota
	// TrustRevoked: a time-boxed lock is counting down; expiry forces logout.
	TrustRevoked
	// TrustBlocked: the device is administratively blocked, indefinitely.
	TrustBlocked
)

func (s TrustState) String() string {
	switch s {
	case TrustRevoked:
		return "revoked"
	case TrustBlocked:
		return "blocked"
	default:
		return "normal"
	}
}

// TrustStatus is the snapshot served to the dashboard shell; it drives the
// full-screen overlay and the login countdown.
type TrustStatus struct {
	State       string `json:"state"`
	Reason      string `json:"reason,omitempty"`
	RemainingMs int64  `json:"remaining_ms,omitempty"`
	Deadline    int64  `json:"deadline,omitempty"`
	LoggedIn    bool   `json:"logged_in"`
}
