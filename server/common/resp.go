package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Resp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func SuccessResp(c *gin.Context, data ...any) {
	if len(data) == 0 {
		c.JSON(http.StatusOK, Resp{Code: 200, Message: "success"})
		return
	}
	c.JSON(http.StatusOK, Resp{Code: 200, Message: "success", Data: data[0]})
}

func ErrorResp(c *gin.Context, err error, code int) {
	ErrorStrResp(c, err.Error(), code)
}

func ErrorStrResp(c *gin.Context, msg string, code int) {
	c.JSON(code, Resp{Code: code, Message: msg})
}

// LockedResp answers with 423 and the trust snapshot so the shell can render
// the overlay from the refusal itself.
func LockedResp(c *gin.Context, msg string, data any) {
	c.AbortWithStatusJSON(http.StatusLocked, Resp{Code: http.StatusLocked, Message: msg, Data: data})
}
