package handles

import (
	"github.com/ecomops/devicegate/internal/device"
	"github.com/ecomops/devicegate/internal/errs"
	"github.com/ecomops/devicegate/internal/model"
	"github.com/ecomops/devicegate/internal/profile"
	"github.com/ecomops/devicegate/pkg/bus"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/ecomops/devicegate/server/common"
)

type DeviceResp struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id,omitempty"`
	Blocked    bool   `json:"blocked"`
	Reason     string `json:"reason,omitempty"`
	Current    bool   `json:"current"`
	LastActive int64  `json:"last_active,omitempty"`
	UA         string `json:"ua,omitempty"`
	IP         string `json:"ip,omitempty"`
}

func toDeviceResp(list *model.DeviceList, localID string) []DeviceResp {
	resp := make([]DeviceResp, len(list.Records))
	for i, rec := range list.Records {
		resp[i] = DeviceResp{
			ID:         rec.ID,
			SessionID:  rec.SessionID,
			Blocked:    rec.Blocked,
			Reason:     rec.BlockedReason,
			Current:    rec.Current || (localID != "" && rec.ID == localID),
			LastActive: rec.LastActive,
			UA:         rec.UserAgent,
			IP:         utils.MaskIP(rec.IP),
		}
	}
	return resp
}

func MyDevices(c *gin.Context) {
	list, _, err := Client.MyDevices(c.Request.Context())
	if err != nil {
		if errors.Is(err, errs.Unauthorized) {
			common.ErrorStrResp(c, errs.Unauthorized.Error(), 401)
			return
		}
		common.ErrorResp(c, err, 500)
		return
	}
	common.SuccessResp(c, toDeviceResp(list, device.CurrentID()))
}

// RemoveMyDevice deletes one of the caller's own devices. Removing the
// current device, or the last remaining one, is self-logout: the revoked lock
// is set and the reconciler is signalled immediately instead of waiting for
// the next poll tick.
func RemoveMyDevice(c *gin.Context) {
	deviceID := c.Param("deviceId")
	if deviceID == "" {
		common.ErrorStrResp(c, "device id required", 400)
		return
	}
	selfHit := deviceID == device.CurrentID()
	if !selfHit {
		if list, _, err := Client.MyDevices(c.Request.Context()); err == nil {
			selfHit = len(list.Records) <= 1
		}
	}
	if err := Client.RemoveMyDevice(c.Request.Context(), deviceID); err != nil {
		deviceOpErr(c, err)
		return
	}
	if selfHit {
		signalRevoked("current device removed")
	}
	common.SuccessResp(c)
}

// ClearMyDevices wipes the caller's whole device list, which always includes
// the current one.
func ClearMyDevices(c *gin.Context) {
	if err := Client.ClearMyDevices(c.Request.Context()); err != nil {
		deviceOpErr(c, err)
		return
	}
	signalRevoked("all devices removed")
	common.SuccessResp(c)
}

func UserDevices(c *gin.Context) {
	list, _, err := Client.UserDevices(c.Request.Context(), c.Param("userId"))
	if err != nil {
		deviceOpErr(c, err)
		return
	}
	localID := ""
	if actingOnSelf(c.Param("userId")) {
		localID = device.CurrentID()
	}
	common.SuccessResp(c, toDeviceResp(list, localID))
}

// BlockUserDevice blocks a device of the target user. Blocking one's own
// current device raises the indefinite block flag locally in the same turn;
// acting on another user never locks the actor.
func BlockUserDevice(c *gin.Context) {
	userID, deviceID := c.Param("userId"), c.Param("deviceId")
	if err := Client.BlockDevice(c.Request.Context(), userID, deviceID); err != nil {
		deviceOpErr(c, err)
		return
	}
	if actingOnSelf(userID) && deviceID == device.CurrentID() {
		Bus.Publish(bus.Event{Type: bus.EventDeviceBlocked, Reason: "this device was blocked"})
	}
	common.SuccessResp(c)
}

// UnblockUserDevice lifts a block. The local block flag is not cleared here;
// the next poll observing the unblocked record is what clears it, keeping the
// server authoritative.
func UnblockUserDevice(c *gin.Context) {
	if err := Client.UnblockDevice(c.Request.Context(), c.Param("userId"), c.Param("deviceId")); err != nil {
		deviceOpErr(c, err)
		return
	}
	common.SuccessResp(c)
}

func RemoveUserDevice(c *gin.Context) {
	userID, deviceID := c.Param("userId"), c.Param("deviceId")
	if err := Client.RemoveUserDevice(c.Request.Context(), userID, deviceID); err != nil {
		deviceOpErr(c, err)
		return
	}
	if actingOnSelf(userID) && deviceID == device.CurrentID() {
		signalRevoked("current device removed")
	}
	common.SuccessResp(c)
}

func ClearUserDevices(c *gin.Context) {
	userID := c.Param("userId")
	if err := Client.ClearUserDevices(c.Request.Context(), userID); err != nil {
		deviceOpErr(c, err)
		return
	}
	if actingOnSelf(userID) {
		signalRevoked("all devices removed")
	}
	common.SuccessResp(c)
}

func actingOnSelf(userID string) bool {
	p := profile.Get()
	return p != nil && p.UserID != "" && p.UserID == userID
}

// signalRevoked publishes the same-turn revocation signal; the reconciler's
// subscription persists the lock with the configured duration.
func signalRevoked(reason string) {
	Bus.Publish(bus.Event{Type: bus.EventSessionRevoked, Reason: reason})
}

func deviceOpErr(c *gin.Context, err error) {
	if errors.Is(err, errs.Unauthorized) {
		common.ErrorStrResp(c, errs.Unauthorized.Error(), 401)
		return
	}
	common.ErrorResp(c, err, 500)
}
