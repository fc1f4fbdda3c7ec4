package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/internal/errs"
	"github.com/ecomops/devicegate/internal/lockout"
	"github.com/ecomops/devicegate/internal/model"
	"github.com/ecomops/devicegate/pkg/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	list  *model.DeviceList
	found bool
	err   error
}

func (f *fakeLister) MyDevices(context.Context) (*model.DeviceList, bool, error) {
	return f.list, f.found, f.err
}

const localID = "dev_local"

func setup(t *testing.T) (*Reconciler, *fakeLister) {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.SetValue(conf.KeyDeviceID, localID))

	lister := &fakeLister{}
	r := New(lister, bus.New(), conf.PollConfig{
		IntervalMs:        2000,
		CountdownMs:       1000,
		RevokeLockMinutes: 30,
	})
	return r, lister
}

func healthyList() *model.DeviceList {
	return &model.DeviceList{Records: []model.DeviceRecord{
		{ID: localID, SessionID: "row1", Current: true},
	}}
}

func TestHealthyPollIsIdempotent(t *testing.T) {
	r, lister := setup(t)
	lister.list, lister.found = healthyList(), true

	for i := 0; i < 5; i++ {
		r.Tick(context.Background())
	}

	assert.False(t, lockout.Get().Locked)
	blocked, _ := lockout.Blocked()
	assert.False(t, blocked)
	assert.Equal(t, "normal", r.Snapshot().State)
}

func TestAuthRejectionLocksOnFirstResponse(t *testing.T) {
	r, lister := setup(t)
	lister.err = errs.Unauthorized

	r.Tick(context.Background())

	st := lockout.Get()
	assert.True(t, st.Locked)
	assert.Equal(t, "revoked", r.Snapshot().State)
}

func TestTransientErrorNeverLocks(t *testing.T) {
	r, lister := setup(t)
	lister.err = assert.AnError

	r.Tick(context.Background())

	assert.False(t, lockout.Get().Locked)
	assert.Equal(t, "normal", r.Snapshot().State)
}

func TestUnresolvedIdentityFailsClosed(t *testing.T) {
	r, lister := setup(t)
	lister.found = true
	lister.list = &model.DeviceList{Records: []model.DeviceRecord{
		{ID: "other1", SessionID: "s1"},
		{ID: "other2", SessionID: "s2"},
	}}

	r.Tick(context.Background())

	assert.True(t, lockout.Get().Locked, "two unmatchable records must not pass as normal")
	assert.Equal(t, "revoked", r.Snapshot().State)
}

func TestBlockedIsIndefiniteNotCountdown(t *testing.T) {
	r, lister := setup(t)
	lister.found = true
	lister.list = &model.DeviceList{Records: []model.DeviceRecord{
		{ID: localID, Blocked: true, BlockedReason: "policy violation"},
	}}

	r.Tick(context.Background())

	blocked, reason := lockout.Blocked()
	assert.True(t, blocked)
	assert.Equal(t, "policy violation", reason)
	assert.False(t, lockout.Get().Locked, "blocking must not also start a countdown")

	snap := r.Snapshot()
	assert.Equal(t, "blocked", snap.State)
	assert.Zero(t, snap.RemainingMs)
}

func TestBlockedViaResolvedCurrentRecord(t *testing.T) {
	r, lister := setup(t)
	lister.found = true
	// current resolved by flag, id does not match local storage
	lister.list = &model.DeviceList{Records: []model.DeviceRecord{
		{ID: "elsewhere", Current: true, Blocked: true},
		{ID: "another"},
	}}

	r.Tick(context.Background())

	blocked, _ := lockout.Blocked()
	assert.True(t, blocked)
}

func TestEmptyListRevokes(t *testing.T) {
	r, lister := setup(t)
	lister.found = true
	lister.list = &model.DeviceList{}

	r.Tick(context.Background())

	assert.True(t, lockout.Get().Locked)
}

func TestUnparseableBodyRevokes(t *testing.T) {
	r, lister := setup(t)
	lister.found = false
	lister.list = &model.DeviceList{}

	r.Tick(context.Background())

	assert.True(t, lockout.Get().Locked)
}

func TestSessionRowDisappearanceRevokes(t *testing.T) {
	r, lister := setup(t)
	lister.found = true
	lister.list = healthyList()
	r.Tick(context.Background())

	row, err := db.GetValue(conf.KeySessionRowID)
	require.NoError(t, err)
	require.Equal(t, "row1", row)

	// same device still listed, but the remembered session row is gone
	lister.list = &model.DeviceList{Records: []model.DeviceRecord{
		{ID: localID, SessionID: "row2", Current: true},
	}}
	r.Tick(context.Background())

	assert.True(t, lockout.Get().Locked)
	assert.Equal(t, "revoked", r.Snapshot().State)
}

func TestHealthyPollRecoversFromBothLocks(t *testing.T) {
	r, lister := setup(t)
	lockout.SetRevoked("old", time.Minute)
	lockout.SetBlocked("old block")

	lister.found = true
	lister.list = healthyList()
	r.Tick(context.Background())

	assert.False(t, lockout.Get().Locked)
	blocked, _ := lockout.Blocked()
	assert.False(t, blocked)
	assert.Equal(t, "normal", r.Snapshot().State)
}

func TestSingleRecordResolvedByElimination(t *testing.T) {
	r, lister := setup(t)
	require.NoError(t, db.DeleteValues(conf.DeviceIDKeys...))
	lister.found = true
	lister.list = &model.DeviceList{Records: []model.DeviceRecord{
		{ID: "unknown", SessionID: "s1"},
	}}

	r.Tick(context.Background())

	assert.False(t, lockout.Get().Locked)
	assert.Equal(t, "normal", r.Snapshot().State)
}

func TestCurrentHintWinsOverLocalID(t *testing.T) {
	r, lister := setup(t)
	lister.found = true
	lister.list = &model.DeviceList{
		CurrentID:     "hinted",
		CurrentHinted: true,
		Records: []model.DeviceRecord{
			{ID: localID},
			{ID: "hinted", Blocked: true},
		},
	}

	r.Tick(context.Background())

	blocked, _ := lockout.Blocked()
	assert.True(t, blocked, "the server-hinted record is the current one")
}

func TestSequenceGuardDiscardsStale(t *testing.T) {
	r, _ := setup(t)
	assert.True(t, r.claim(2))
	assert.False(t, r.claim(1), "an older response must not override a newer one")
	assert.True(t, r.claim(3))
}

func TestHandleEventSelfSignals(t *testing.T) {
	r, _ := setup(t)

	r.handleEvent(bus.Event{Type: bus.EventSessionRevoked, Reason: "current device removed"})
	st := lockout.Get()
	assert.True(t, st.Locked)
	assert.Equal(t, "current device removed", st.Reason)

	lockout.Clear()
	r.handleEvent(bus.Event{Type: bus.EventDeviceBlocked, Reason: "self block"})
	blocked, reason := lockout.Blocked()
	assert.True(t, blocked)
	assert.Equal(t, "self block", reason)
}

func TestRevokedLockNotExtendedAcrossTicks(t *testing.T) {
	r, lister := setup(t)
	lister.err = errs.Unauthorized

	r.Tick(context.Background())
	first := lockout.Get().Deadline
	time.Sleep(20 * time.Millisecond)
	r.Tick(context.Background())

	assert.Equal(t, first, lockout.Get().Deadline)
}

func TestCountdownExpiryForcesLogout(t *testing.T) {
	r, _ := setup(t)
	r.countdown = 10 * time.Millisecond
	require.NoError(t, db.SetValue(conf.KeyAuthToken, "tok"))
	require.NoError(t, db.SetValue(conf.KeySessionRowID, "row1"))
	lockout.SetRevoked("revoked", 40*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.countdownLoop(ctx)

	assert.Eventually(t, func() bool {
		token, _ := db.GetValue(conf.KeyAuthToken)
		return token == ""
	}, time.Second, 10*time.Millisecond, "expiry must wipe the auth token")

	row, _ := db.GetValue(conf.KeySessionRowID)
	assert.Empty(t, row)
	id, _ := db.GetValue(conf.KeyDeviceID)
	assert.Equal(t, localID, id, "device identity survives the forced logout")
}

func TestRecoveryDisarmsCountdown(t *testing.T) {
	r, lister := setup(t)
	r.countdown = 10 * time.Millisecond
	require.NoError(t, db.SetValue(conf.KeyAuthToken, "tok"))
	lockout.SetRevoked("revoked", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.countdownLoop(ctx)
	// let the loop observe the active lock
	time.Sleep(50 * time.Millisecond)

	lister.found = true
	lister.list = healthyList()
	r.Tick(context.Background())
	time.Sleep(50 * time.Millisecond)

	token, _ := db.GetValue(conf.KeyAuthToken)
	assert.Equal(t, "tok", token, "a lock cleared by recovery must not force logout")
	assert.Equal(t, "normal", r.Snapshot().State)
}

func TestLoginClearDisarmsCountdown(t *testing.T) {
	r, _ := setup(t)
	r.countdown = 10 * time.Millisecond
	require.NoError(t, db.SetValue(conf.KeyAuthToken, "tok"))
	lockout.SetRevoked("revoked", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.countdownLoop(ctx)
	time.Sleep(50 * time.Millisecond)

	// what a successful login does once the lock has lapsed
	lockout.Clear()
	time.Sleep(50 * time.Millisecond)

	token, _ := db.GetValue(conf.KeyAuthToken)
	assert.Equal(t, "tok", token)
}

func TestLogoutKeepsDeviceIdentity(t *testing.T) {
	_, _ = setup(t)
	require.NoError(t, db.SetValue(conf.KeyAuthToken, "tok"))
	require.NoError(t, db.SetValue(conf.KeySessionRowID, "row1"))

	Logout()

	token, _ := db.GetValue(conf.KeyAuthToken)
	assert.Empty(t, token)
	row, _ := db.GetValue(conf.KeySessionRowID)
	assert.Empty(t, row)
	id, _ := db.GetValue(conf.KeyDeviceID)
	assert.Equal(t, localID, id, "device identity survives logout")
}
