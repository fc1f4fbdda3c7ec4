package handles

import (
	"strings"

	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/internal/device"
	"github.com/ecomops/devicegate/internal/errs"
	"github.com/ecomops/devicegate/internal/lockout"
	"github.com/ecomops/devicegate/internal/model"
	"github.com/ecomops/devicegate/internal/profile"
	"github.com/ecomops/devicegate/internal/session"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/ecomops/devicegate/server/common"
)

type LoginReq struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// Login is the login gate. A locked state refuses the attempt before any
// validation or network call; local validation runs before the request goes
// out.
func Login(c *gin.Context) {
	if blocked, reason := lockout.Blocked(); blocked {
		common.LockedResp(c, errs.DeviceBlocked.Error(), model.TrustStatus{
			State: model.TrustBlocked.String(), Reason: reason,
		})
		return
	}
	if st := lockout.Get(); st.Locked {
		common.LockedResp(c, errs.LoginLocked.Error(), model.TrustStatus{
			State:       model.TrustRevoked.String(),
			Reason:      st.Reason,
			RemainingMs: st.RemainingMs,
			Deadline:    st.Deadline,
		})
		return
	}

	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResp(c, err, 400)
		return
	}
	if !validPhone(req.PhoneNumber) {
		common.ErrorStrResp(c, "invalid phone number", 400)
		return
	}
	if req.Password == "" {
		common.ErrorStrResp(c, "password required", 400)
		return
	}

	deviceID := device.GetOrCreateID()
	result, err := Client.Login(c.Request.Context(), req.PhoneNumber, req.Password, deviceID)
	if err != nil {
		switch {
		case errors.Is(err, errs.BadCredentials):
			common.ErrorStrResp(c, errs.BadCredentials.Error(), 401)
		case errors.Is(err, errs.RateLimited):
			common.ErrorStrResp(c, errs.RateLimited.Error(), 429)
		default:
			common.ErrorResp(c, err, 500)
		}
		return
	}

	if err := db.SetValue(conf.KeyAuthToken, result.Token); err != nil {
		utils.Log.Warnf("failed to persist auth token: %+v", err)
	}
	if err := profile.Save(&model.Profile{
		UserID: result.UserID,
		Phone:  req.PhoneNumber,
		Role:   result.Role,
	}); err != nil {
		utils.Log.Debugf("failed to cache profile: %+v", err)
	}
	lockout.Clear()
	common.SuccessResp(c, result)
}

// Logout clears the local auth state; the device identity survives. The block
// flag is left to the reconciler, which clears it only when a fresh poll shows
// the device unblocked.
func Logout(c *gin.Context) {
	session.Logout()
	common.SuccessResp(c)
}

// Me serves the cached profile, the degraded fallback the dashboard uses when
// the backend is unreachable.
func Me(c *gin.Context) {
	p := profile.Get()
	if p == nil {
		common.ErrorStrResp(c, "no cached profile", 404)
		return
	}
	common.SuccessResp(c, p)
}

func validPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	for _, prefix := range conf.Conf.Login.PhonePrefixes {
		if !strings.HasPrefix(phone, prefix) {
			continue
		}
		rest := phone[len(prefix):]
		if len(rest) < 7 || len(rest) > 12 {
			continue
		}
		if strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			continue
		}
		return true
	}
	return false
}
