package conf

// Conf is the process-wide configuration, set by bootstrap before anything
// else runs.
var Conf *Config

// Storage keys. The device id is written under every key in DeviceIDKeys so
// state persisted by earlier client versions keeps resolving; reads walk the
// same list newest-first.
const (
	KeyDeviceID = "device_id"

	KeyLockUntil   = "session_lock_until"
	KeyLockReason  = "session_lock_reason"
	KeyBlocked     = "device_blocked"
	KeyBlockReason = "device_blocked_reason"

	KeySessionRowID = "current_session_row"
	KeyAuthToken    = "auth_token"
	KeyProfile      = "cached_profile"
)

// Legacy key variants kept for backward compatibility with prior stored
// values.
var DeviceIDKeys = []string{
	KeyDeviceID,
	"deviceId",
	"device_key",
	"x-device-id",
}
