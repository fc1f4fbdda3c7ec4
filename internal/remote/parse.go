package remote

import (
	"strings"

	"github.com/ecomops/devicegate/internal/model"
	"github.com/ecomops/devicegate/pkg/utils"
)

// Candidate field names observed across backend deployments. Order matters:
// the first hit wins.
var (
	deviceArrayPaths = []string{
		"devices", "myDevices", "sessions", "activeSessions", "items",
		"data.devices", "data.myDevices", "data.sessions", "data.activeSessions",
		"data.items", "data", "result.devices", "result.sessions",
	}
	deviceIDKeys = []string{
		"deviceId", "device_id", "_id", "id", "sessionId", "session_id", "sid",
		"tokenId", "token_id",
	}
	sessionRowKeys = []string{
		"sessionId", "session_id", "sid", "tokenId", "token_id", "_id", "id",
	}
	blockedKeys = []string{"isBlocked", "is_blocked", "blocked", "banned", "is_banned"}
	currentKeys = []string{"isCurrent", "is_current", "current", "isThisDevice", "this_device"}
	reasonKeys  = []string{"blockedReason", "blocked_reason", "blockReason", "reason"}
	activeKeys  = []string{
		"lastActiveAt", "last_active", "lastActive", "lastSeen", "last_seen_at",
		"updatedAt", "updated_at",
	}
	uaKeys = []string{"userAgent", "user_agent", "ua"}
	ipKeys = []string{"ip", "ipAddress", "ip_address"}

	currentHintPaths = []string{
		"currentDeviceId", "current_device_id",
		"data.currentDeviceId", "data.current_device_id",
		"meta.currentDeviceId",
	}
)

// ParseDeviceList normalizes whatever shape the device-list endpoint answered
// with. The second result reports whether any array was found at all; an
// absent array and an empty one are treated alike by the reconciler, but
// callers still get to tell them apart.
func ParseDeviceList(raw map[string]any) (*model.DeviceList, bool) {
	list := &model.DeviceList{}
	if hint := utils.FirstStringPath(raw, currentHintPaths...); hint != "" {
		list.CurrentID = hint
		list.CurrentHinted = true
	}
	arr, found := utils.FirstArray(raw, deviceArrayPaths...)
	if !found {
		return list, false
	}
	for _, item := range arr {
		rec, ok := parseRecord(item)
		if ok {
			list.Records = append(list.Records, rec)
		}
	}
	return list, true
}

func parseRecord(item any) (model.DeviceRecord, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return model.DeviceRecord{}, false
	}
	rec := model.DeviceRecord{
		ID:            utils.FirstString(m, deviceIDKeys...),
		SessionID:     utils.FirstString(m, sessionRowKeys...),
		Blocked:       recordBlocked(m),
		BlockedReason: utils.FirstString(m, reasonKeys...),
		Current:       utils.TruthyField(m, currentKeys...),
		UserAgent:     utils.FirstString(m, uaKeys...),
		IP:            utils.FirstString(m, ipKeys...),
	}
	for _, k := range activeKeys {
		if v, ok := m[k]; ok {
			if ms := utils.EpochMillis(v); ms > 0 {
				rec.LastActive = ms
				break
			}
		}
	}
	return rec, true
}

func recordBlocked(m map[string]any) bool {
	if utils.TruthyField(m, blockedKeys...) {
		return true
	}
	switch strings.ToLower(utils.FirstString(m, "status", "state")) {
	case "blocked", "banned", "suspended":
		return true
	}
	return false
}

// tokenPaths and rolePaths cover the login response variants.
var (
	tokenPaths = []string{
		"accessToken", "access_token", "token",
		"data.accessToken", "data.access_token", "data.token",
	}
	rolePaths = []string{
		"role", "user.role", "data.role", "data.user.role",
	}
	userIDPaths = []string{
		"user.id", "user._id", "data.user.id", "data.user._id", "userId", "user_id",
	}
)
