// Package lockout persists the two client-local lock conclusions: the
// time-boxed revoked lock and the indefinite forced-block flag. Both are
// cached conclusions only; the server's device list stays authoritative and
// is re-checked on the next poll.
package lockout

import (
	"strconv"
	"time"

	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/pkg/utils"
)

const DefaultRevokeDuration = 30 * time.Minute

// State is the lock view recomputed from the persisted deadline on each call.
type State struct {
	Locked      bool
	RemainingMs int64
	Deadline    int64
	Reason      string
}

// SetRevoked persists now+d as the lock deadline unless a lock is already
// active, in which case the existing deadline is returned unchanged. The
// no-extension rule keeps a refresh loop from extending the lockout forever.
func SetRevoked(reason string, d time.Duration) int64 {
	if d <= 0 {
		d = DefaultRevokeDuration
	}
	if st := Get(); st.Locked {
		return st.Deadline
	}
	deadline := time.Now().Add(d).UnixMilli()
	if err := db.SetValue(conf.KeyLockUntil, strconv.FormatInt(deadline, 10)); err != nil {
		utils.Log.Warnf("failed to persist lock deadline: %+v", err)
	}
	if err := db.SetValue(conf.KeyLockReason, reason); err != nil {
		utils.Log.Debugf("failed to persist lock reason: %+v", err)
	}
	return deadline
}

// Get reads the persisted deadline; an expired or absent deadline clears
// storage and reports unlocked. Remaining time is wall-clock subtraction, not
// a running timer.
func Get() State {
	raw, err := db.GetValue(conf.KeyLockUntil)
	if err != nil {
		utils.Log.Debugf("failed to read lock deadline: %+v", err)
		return State{}
	}
	if raw == "" {
		return State{}
	}
	deadline, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		Clear()
		return State{}
	}
	remaining := deadline - time.Now().UnixMilli()
	if remaining <= 0 {
		Clear()
		return State{}
	}
	reason, _ := db.GetValue(conf.KeyLockReason)
	return State{Locked: true, RemainingMs: remaining, Deadline: deadline, Reason: reason}
}

// Clear unconditionally removes the persisted deadline and reason.
func Clear() {
	if err := db.DeleteValues(conf.KeyLockUntil, conf.KeyLockReason); err != nil {
		utils.Log.Debugf("failed to clear lock: %+v", err)
	}
}

// SetBlocked persists the indefinite forced-block flag. Distinct from the
// revoked lock: no countdown, cleared only when a fresh poll shows the device
// unblocked.
func SetBlocked(reason string) {
	if err := db.SetValue(conf.KeyBlocked, "1"); err != nil {
		utils.Log.Warnf("failed to persist block flag: %+v", err)
	}
	if err := db.SetValue(conf.KeyBlockReason, reason); err != nil {
		utils.Log.Debugf("failed to persist block reason: %+v", err)
	}
}

// Blocked reports the forced-block flag and its reason.
func Blocked() (bool, string) {
	v, err := db.GetValue(conf.KeyBlocked)
	if err != nil || v == "" {
		return false, ""
	}
	reason, _ := db.GetValue(conf.KeyBlockReason)
	return true, reason
}

// ClearBlocked removes the forced-block flag.
func ClearBlocked() {
	if err := db.DeleteValues(conf.KeyBlocked, conf.KeyBlockReason); err != nil {
		utils.Log.Debugf("failed to clear block flag: %+v", err)
	}
}
