package lockout

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initStorage(t *testing.T) {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = db.Close() })
}

func TestSetRevokedNoExtension(t *testing.T) {
	initStorage(t)

	first := SetRevoked("revoked", 30*time.Minute)
	second := SetRevoked("revoked again", 30*time.Minute)

	assert.Equal(t, first, second, "an active lock must never be extended")

	st := Get()
	assert.True(t, st.Locked)
	assert.Equal(t, first, st.Deadline)
	assert.Equal(t, "revoked", st.Reason, "original reason survives the second call")
}

func TestGetAfterExpiryClearsStorage(t *testing.T) {
	initStorage(t)

	SetRevoked("short", 50*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	st := Get()
	assert.False(t, st.Locked)
	assert.Zero(t, st.RemainingMs)

	raw, err := db.GetValue(conf.KeyLockUntil)
	require.NoError(t, err)
	assert.Empty(t, raw, "expired deadline must not linger in storage")
}

func TestGetRecomputesRemaining(t *testing.T) {
	initStorage(t)

	SetRevoked("r", time.Minute)
	a := Get().RemainingMs
	time.Sleep(20 * time.Millisecond)
	b := Get().RemainingMs
	assert.Greater(t, a, b)
}

func TestClear(t *testing.T) {
	initStorage(t)

	SetRevoked("r", time.Minute)
	Clear()
	assert.False(t, Get().Locked)
}

func TestBlockedFlagIndependentOfLock(t *testing.T) {
	initStorage(t)

	SetBlocked("admin said so")
	blocked, reason := Blocked()
	assert.True(t, blocked)
	assert.Equal(t, "admin said so", reason)
	assert.False(t, Get().Locked, "block flag carries no countdown")

	ClearBlocked()
	blocked, _ = Blocked()
	assert.False(t, blocked)
}

func TestCorruptDeadlineClears(t *testing.T) {
	initStorage(t)

	require.NoError(t, db.SetValue(conf.KeyLockUntil, "garbage"))
	assert.False(t, Get().Locked)
	raw, _ := db.GetValue(conf.KeyLockUntil)
	assert.Empty(t, raw)
}
