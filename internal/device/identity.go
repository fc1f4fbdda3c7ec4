// Package device owns the stable, self-generated identifier that ties this
// running instance to the device records the server keeps for the account.
package device

import (
	"strconv"
	"strings"
	"time"

	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/google/uuid"
)

// GetOrCreateID returns the persisted device id, generating and persisting one
// when none exists yet. A storage failure never fails the call: the generated
// id is still returned (unpersisted) so a login can proceed, matching the
// availability-over-consistency choice of the original client.
func GetOrCreateID() string {
	if id := CurrentID(); id != "" {
		return id
	}
	id := newID()
	if err := persist(id); err != nil {
		utils.Log.Warnf("device id not persisted, using one-off fallback: %+v", err)
		return fallbackID()
	}
	return id
}

// CurrentID is the read-only accessor: it never generates. Reads walk the
// legacy key variants newest-first and backfill the primary key when the id
// was only stored under an older one.
func CurrentID() string {
	for i, key := range conf.DeviceIDKeys {
		id, err := db.GetValue(key)
		if err != nil {
			utils.Log.Debugf("device id read failed for %s: %+v", key, err)
			continue
		}
		if id == "" {
			continue
		}
		if i > 0 {
			_ = db.SetValue(conf.KeyDeviceID, id)
		}
		return id
	}
	return ""
}

// ClearAll removes the identity from every key variant. Only an explicit
// clear does this; logout keeps the id so the server can match future logins
// to the same physical device.
func ClearAll() error {
	return db.DeleteValues(conf.DeviceIDKeys...)
}

func persist(id string) error {
	if err := db.SetValue(conf.KeyDeviceID, id); err != nil {
		return err
	}
	for _, key := range conf.DeviceIDKeys[1:] {
		if err := db.SetValue(key, id); err != nil {
			utils.Log.Debugf("legacy device id key %s not written: %+v", key, err)
		}
	}
	return nil
}

func newID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "dev_" + raw + "_" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}

func fallbackID() string {
	return "dev_tmp_" + strconv.FormatInt(time.Now().UnixNano(), 36)
}
