// Package session holds the reconciler that keeps the local trust conclusion
// converged with the server's device list.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/internal/device"
	"github.com/ecomops/devicegate/internal/errs"
	"github.com/ecomops/devicegate/internal/lockout"
	"github.com/ecomops/devicegate/internal/model"
	"github.com/ecomops/devicegate/pkg/bus"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/pkg/errors"
)

const (
	reasonAuthRejected = "authorization rejected"
	reasonNoSessions   = "no active sessions for this account"
	reasonSessionGone  = "this session was closed remotely"
	reasonUnresolved   = "this session is no longer recognized"
	reasonBlocked      = "this device was blocked by an administrator"
)

type Reconciler struct {
	client Lister

	interval     time.Duration
	countdown    time.Duration
	lockDuration time.Duration

	bus *bus.Bus

	mu     sync.Mutex
	state  model.TrustState
	reason string

	seq     atomic.Uint64
	applied atomic.Uint64
}

// Lister is the slice of the remote client the reconciler needs.
type Lister interface {
	MyDevices(ctx context.Context) (*model.DeviceList, bool, error)
}

func New(client Lister, b *bus.Bus, cfg conf.PollConfig) *Reconciler {
	r := &Reconciler{
		client:       client,
		interval:     time.Duration(cfg.IntervalMs) * time.Millisecond,
		countdown:    time.Duration(cfg.CountdownMs) * time.Millisecond,
		lockDuration: time.Duration(cfg.RevokeLockMinutes) * time.Minute,
		bus:          b,
	}
	if r.interval <= 0 {
		r.interval = 2 * time.Second
	}
	if r.countdown <= 0 {
		r.countdown = time.Second
	}
	return r
}

// Run starts the poll loop (one immediate tick, then fixed interval) and the
// independent countdown loop, and reacts to revocation signals published on
// the bus. Both loops stop when ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	unsubscribe := r.bus.Subscribe(r.handleEvent)
	defer unsubscribe()

	go r.countdownLoop(ctx)

	r.Tick(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// ticks are not queued behind a slow poll; each runs
			// independently and the sequence guard keeps a stale
			// response from clobbering a newer conclusion
			go r.Tick(ctx)
		}
	}
}

// handleEvent applies same-turn signals from the device administration
// handlers, so a self-block locks before the next poll tick.
func (r *Reconciler) handleEvent(e bus.Event) {
	switch e.Type {
	case bus.EventSessionRevoked:
		lockout.SetRevoked(e.Reason, r.lockDuration)
		r.setState(model.TrustRevoked, e.Reason)
	case bus.EventDeviceBlocked:
		lockout.SetBlocked(e.Reason)
		r.setState(model.TrustBlocked, e.Reason)
	}
}

// Tick performs one reconciliation pass against the device list.
func (r *Reconciler) Tick(ctx context.Context) {
	// a persisted block renders immediately, before any network round trip
	if blocked, reason := lockout.Blocked(); blocked {
		r.setState(model.TrustBlocked, reason)
	}

	seq := r.seq.Add(1)
	list, found, err := r.client.MyDevices(ctx)
	if !r.claim(seq) {
		return
	}
	if err != nil {
		if errors.Is(err, errs.Unauthorized) {
			r.revoke(reasonAuthRejected)
			return
		}
		// transient failure: never a lock, try again next tick
		utils.Log.Debugf("device poll failed, will retry: %+v", err)
		r.syncFromStores()
		return
	}

	if !found || len(list.Records) == 0 {
		r.revoke(reasonNoSessions)
		return
	}

	localID := device.CurrentID()
	current, resolved := resolveCurrent(list, localID)

	if deviceBlocked(list, localID, current, resolved) {
		reason := blockReason(list, localID, current, resolved)
		lockout.SetBlocked(reason)
		r.setState(model.TrustBlocked, reason)
		return
	}

	if prevRowGone(list) {
		r.revoke(reasonSessionGone)
		return
	}

	if !resolved {
		// fail closed: an unresolvable session is the dangerous case
		r.revoke(reasonUnresolved)
		return
	}

	// found and healthy: recovery path clears prior conclusions
	lockout.Clear()
	lockout.ClearBlocked()
	rememberSessionRow(current)
	r.setState(model.TrustNormal, "")
}

// claim applies the sequence guard: a response older than the newest applied
// one is discarded.
func (r *Reconciler) claim(seq uint64) bool {
	for {
		cur := r.applied.Load()
		if seq <= cur {
			return false
		}
		if r.applied.CompareAndSwap(cur, seq) {
			return true
		}
	}
}

func (r *Reconciler) revoke(reason string) {
	lockout.SetRevoked(reason, r.lockDuration)
	r.setState(model.TrustRevoked, reason)
}

func (r *Reconciler) setState(s model.TrustState, reason string) {
	r.mu.Lock()
	r.state = s
	r.reason = reason
	r.mu.Unlock()
}

// syncFromStores rebuilds the in-memory state from the persisted stores.
// Used after swallowed poll failures so a lock set by another component still
// shows.
func (r *Reconciler) syncFromStores() {
	if blocked, reason := lockout.Blocked(); blocked {
		r.setState(model.TrustBlocked, reason)
		return
	}
	if st := lockout.Get(); st.Locked {
		r.setState(model.TrustRevoked, st.Reason)
		return
	}
	r.setState(model.TrustNormal, "")
}

// countdownLoop recomputes the remaining lock time on its own cadence and
// runs the forced logout exactly when the countdown hits zero. The armed
// deadline distinguishes a lock that expired from one the healthy-poll
// recovery or a fresh login cleared: the forced logout fires only when the
// remembered deadline has actually passed.
func (r *Reconciler) countdownLoop(ctx context.Context) {
	ticker := time.NewTicker(r.countdown)
	defer ticker.Stop()
	var armedDeadline int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if blocked, reason := lockout.Blocked(); blocked {
				r.setState(model.TrustBlocked, reason)
				armedDeadline = 0
				continue
			}
			st := lockout.Get()
			if st.Locked {
				r.setState(model.TrustRevoked, st.Reason)
				armedDeadline = st.Deadline
				continue
			}
			if armedDeadline == 0 {
				continue
			}
			elapsed := time.Now().UnixMilli() >= armedDeadline
			armedDeadline = 0
			if !elapsed {
				continue
			}
			utils.Log.Info("revocation countdown elapsed, forcing logout")
			Logout()
			r.setState(model.TrustNormal, "")
		}
	}
}

// Snapshot reports the trust conclusion for the status endpoint; remaining
// time is recomputed from the persisted deadline on every call.
func (r *Reconciler) Snapshot() model.TrustStatus {
	r.mu.Lock()
	state, reason := r.state, r.reason
	r.mu.Unlock()

	status := model.TrustStatus{State: state.String(), Reason: reason}
	if token, err := db.GetValue(conf.KeyAuthToken); err == nil && token != "" {
		status.LoggedIn = true
	}
	if blocked, breason := lockout.Blocked(); blocked {
		status.State = model.TrustBlocked.String()
		if breason != "" {
			status.Reason = breason
		}
		return status
	}
	if st := lockout.Get(); st.Locked {
		status.State = model.TrustRevoked.String()
		status.RemainingMs = st.RemainingMs
		status.Deadline = st.Deadline
		if st.Reason != "" {
			status.Reason = st.Reason
		}
	}
	return status
}
