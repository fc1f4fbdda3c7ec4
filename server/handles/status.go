package handles

import (
	"github.com/ecomops/devicegate/server/common"
	"github.com/gin-gonic/gin"
)

// TrustStatus reports the reconciler's current conclusion. Always reachable,
// lock or not; it is what the shell renders the overlay from.
func TrustStatus(c *gin.Context) {
	common.SuccessResp(c, Reconciler.Snapshot())
}
