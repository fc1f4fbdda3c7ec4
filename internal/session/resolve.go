package session

import (
	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/internal/model"
)

// resolveCurrent finds "this device" in the polled list. Stages, in order:
// server-supplied hint, local device id, explicit current flag, elimination
// when the list has exactly one record. Multiple records sharing the local id
// are tie-broken by last activity.
func resolveCurrent(list *model.DeviceList, localID string) (model.DeviceRecord, bool) {
	if list.CurrentHinted && list.CurrentID != "" {
		for _, rec := range list.Records {
			if rec.ID == list.CurrentID || rec.SessionID == list.CurrentID {
				return rec, true
			}
		}
	}
	if localID != "" {
		var best model.DeviceRecord
		matched := false
		for _, rec := range list.Records {
			if rec.ID != localID {
				continue
			}
			if !matched || rec.LastActive > best.LastActive {
				best = rec
				matched = true
			}
		}
		if matched {
			return best, true
		}
	}
	for _, rec := range list.Records {
		if rec.Current {
			return rec, true
		}
	}
	if len(list.Records) == 1 {
		return list.Records[0], true
	}
	return model.DeviceRecord{}, false
}

// deviceBlocked takes the union of two independent checks: any record carrying
// the local device id that is marked blocked, and the resolved current record
// itself being marked blocked.
func deviceBlocked(list *model.DeviceList, localID string, current model.DeviceRecord, resolved bool) bool {
	if localID != "" {
		for _, rec := range list.Records {
			if rec.ID == localID && rec.Blocked {
				return true
			}
		}
	}
	return resolved && current.Blocked
}

func blockReason(list *model.DeviceList, localID string, current model.DeviceRecord, resolved bool) string {
	if resolved && current.Blocked && current.BlockedReason != "" {
		return current.BlockedReason
	}
	if localID != "" {
		for _, rec := range list.Records {
			if rec.ID == localID && rec.Blocked && rec.BlockedReason != "" {
				return rec.BlockedReason
			}
		}
	}
	return reasonBlocked
}

// prevRowGone detects the case where this device still has entries but the
// specific session row remembered from an earlier poll has disappeared, i.e.
// an admin revoked one of several concurrent sessions of the same browser.
func prevRowGone(list *model.DeviceList) bool {
	prev, err := db.GetValue(conf.KeySessionRowID)
	if err != nil || prev == "" {
		return false
	}
	for _, rec := range list.Records {
		if rec.SessionID == prev || rec.ID == prev {
			return false
		}
	}
	return true
}

func rememberSessionRow(current model.DeviceRecord) {
	if current.SessionID == "" {
		return
	}
	_ = db.SetValue(conf.KeySessionRowID, current.SessionID)
}
