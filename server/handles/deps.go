package handles

import (
	"github.com/ecomops/devicegate/internal/remote"
	"github.com/ecomops/devicegate/internal/session"
	"github.com/ecomops/devicegate/pkg/bus"
)

// Package-level collaborators, set once by server.Init before routes are
// served. Tests set them directly.
var (
	Client     *remote.Client
	Bus        *bus.Bus
	Reconciler *session.Reconciler
)
