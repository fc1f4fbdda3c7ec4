package middlewares

import (
	"github.com/ecomops/devicegate/internal/errs"
	"github.com/ecomops/devicegate/internal/lockout"
	"github.com/ecomops/devicegate/internal/model"
	"github.com/ecomops/devicegate/server/common"
	"github.com/gin-gonic/gin"
)

// LockGuard refuses every guarded route while a lock or block is active. This
// is the local analog of the full-screen overlay: the shell gets a 423 with
// the trust snapshot on any call it makes from an authenticated page.
func LockGuard(c *gin.Context) {
	if blocked, reason := lockout.Blocked(); blocked {
		common.LockedResp(c, errs.DeviceBlocked.Error(), model.TrustStatus{
			State:  model.TrustBlocked.String(),
			Reason: reason,
		})
		return
	}
	if st := lockout.Get(); st.Locked {
		common.LockedResp(c, errs.SessionRevoked.Error(), model.TrustStatus{
			State:       model.TrustRevoked.String(),
			Reason:      st.Reason,
			RemainingMs: st.RemainingMs,
			Deadline:    st.Deadline,
		})
		return
	}
	c.Next()
}
