// Package profile keeps the best-effort cached copy of the authenticated
// user: persisted for restarts, fronted by a short TTL memory cache for the
// read path.
package profile

import (
	"time"

	cache "github.com/Xhofe/go-cache"
	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/internal/model"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/pkg/errors"
)

const cacheKey = "profile"

var memCache = cache.NewMemCache(cache.WithShards[*model.Profile](2))

func Save(p *model.Profile) error {
	data, err := utils.Json.Marshal(p)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := db.SetValue(conf.KeyProfile, string(data)); err != nil {
		return err
	}
	memCache.Set(cacheKey, p, cache.WithEx[*model.Profile](5*time.Minute))
	return nil
}

// Get returns the cached profile, or nil when none is stored.
func Get() *model.Profile {
	if p, ok := memCache.Get(cacheKey); ok {
		return p
	}
	raw, err := db.GetValue(conf.KeyProfile)
	if err != nil || raw == "" {
		return nil
	}
	var p model.Profile
	if err := utils.Json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	memCache.Set(cacheKey, &p, cache.WithEx[*model.Profile](5*time.Minute))
	return &p
}

func Clear() {
	memCache.Del(cacheKey)
	if err := db.DeleteValue(conf.KeyProfile); err != nil {
		utils.Log.Debugf("failed to clear cached profile: %+v", err)
	}
}
