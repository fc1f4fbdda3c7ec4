package errs

import "errors"

var (
	Unauthorized   = errors.New("unauthorized")
	BadCredentials = errors.New("credentials incorrect")
	RateLimited    = errors.New("too many attempts, try again later")

	SessionRevoked = errors.New("session revoked")
	DeviceBlocked  = errors.New("device blocked")

	LoginLocked = errors.New("login temporarily locked")
)
