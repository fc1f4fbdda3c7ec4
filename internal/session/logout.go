package session

import (
	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/internal/lockout"
	"github.com/ecomops/devicegate/internal/profile"
	"github.com/ecomops/devicegate/pkg/utils"
)

// Logout wipes the local auth state: token, cached profile, remembered
// session row and the revoked lock. The block flag is left alone; only a fresh
// poll showing the device unblocked clears it. The device identity is
// deliberately kept so the server can match the next login to the same
// physical device.
func Logout() {
	if err := db.DeleteValues(conf.KeyAuthToken, conf.KeySessionRowID); err != nil {
		utils.Log.Warnf("failed to clear auth state: %+v", err)
	}
	profile.Clear()
	lockout.Clear()
}
