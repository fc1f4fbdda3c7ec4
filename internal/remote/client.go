// Package remote is the client for the operations backend. The backend's
// response shapes are not guaranteed to be consistent across deployments, so
// everything read from it goes through the tolerant parsers in parse.go.
package remote

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/internal/errs"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type Client struct {
	rc *resty.Client
}

// NewClient builds the shared resty client. deviceID is resolved per request
// so the id generated on first login is picked up without rebuilding the
// client; the auth token is read from storage for the same reason.
func NewClient(cfg conf.RemoteConfig, deviceID func() string) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("x-platform", cfg.Platform)
	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if id := deviceID(); id != "" {
			req.SetHeader("x-device-id", id)
		}
		if token, err := db.GetValue(conf.KeyAuthToken); err == nil && token != "" {
			req.SetHeader("Authorization", "Bearer "+token)
		}
		return nil
	})
	return &Client{rc: rc}
}

func (c *Client) r() *resty.Request {
	return c.rc.R()
}

// decodeBody unmarshals a response body into a generic map; a body that is a
// bare JSON array is wrapped so callers always work with a map.
func decodeBody(body []byte) map[string]any {
	if len(body) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := utils.Json.Unmarshal(body, &m); err == nil {
		return m
	}
	var arr []any
	if err := utils.Json.Unmarshal(body, &arr); err == nil {
		return map[string]any{"items": arr}
	}
	return map[string]any{}
}

// authStatusErr maps status codes of authenticated calls. 401 and 403 both
// mean the server no longer trusts this session.
func authStatusErr(res *resty.Response) error {
	switch res.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.WithStack(errs.Unauthorized)
	}
	if res.IsError() {
		return serverErr(res)
	}
	return nil
}

func serverErr(res *resty.Response) error {
	raw := decodeBody(res.Body())
	if msg := utils.FirstStringPath(raw, "message", "error", "data.message"); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("request failed: HTTP %d", res.StatusCode())
}
