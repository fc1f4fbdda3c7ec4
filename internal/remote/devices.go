package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/ecomops/devicegate/internal/errs"
	"github.com/ecomops/devicegate/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// MyDevices polls the caller's own device/session list. The poll loop calls
// this once per tick with no retry; transient failures are the next tick's
// problem.
func (c *Client) MyDevices(ctx context.Context) (*model.DeviceList, bool, error) {
	return c.deviceList(ctx, "/devices/my")
}

// UserDevices lists the devices of a managed user (admin scope).
func (c *Client) UserDevices(ctx context.Context, userID string) (*model.DeviceList, bool, error) {
	return c.deviceList(ctx, "/devices/users/"+userID)
}

func (c *Client) deviceList(ctx context.Context, path string) (*model.DeviceList, bool, error) {
	res, err := c.r().SetContext(ctx).Get(path)
	if err != nil {
		return nil, false, errors.Wrap(err, "device list request failed")
	}
	if err := authStatusErr(res); err != nil {
		return nil, false, err
	}
	list, found := ParseDeviceList(decodeBody(res.Body()))
	return list, found, nil
}

func (c *Client) BlockDevice(ctx context.Context, userID, deviceID string) error {
	return c.mutate(ctx, "PATCH", fmt.Sprintf("/devices/users/%s/%s/block", userID, deviceID))
}

func (c *Client) UnblockDevice(ctx context.Context, userID, deviceID string) error {
	return c.mutate(ctx, "PATCH", fmt.Sprintf("/devices/users/%s/%s/unblock", userID, deviceID))
}

func (c *Client) RemoveUserDevice(ctx context.Context, userID, deviceID string) error {
	return c.mutate(ctx, "DELETE", fmt.Sprintf("/devices/users/%s/%s", userID, deviceID))
}

func (c *Client) ClearUserDevices(ctx context.Context, userID string) error {
	return c.mutate(ctx, "DELETE", fmt.Sprintf("/devices/users/%s/clear/all", userID))
}

func (c *Client) RemoveMyDevice(ctx context.Context, deviceID string) error {
	return c.mutate(ctx, "DELETE", "/devices/my/"+deviceID)
}

func (c *Client) ClearMyDevices(ctx context.Context) error {
	return c.mutate(ctx, "DELETE", "/devices/my/clear/all")
}

// mutate runs an idempotent admin mutation with a short retry. Authorization
// failures are final and never retried.
func (c *Client) mutate(ctx context.Context, method, path string) error {
	return retry.Do(
		func() error {
			var res *resty.Response
			var err error
			req := c.r().SetContext(ctx)
			switch method {
			case "PATCH":
				res, err = req.Patch(path)
			default:
				res, err = req.Delete(path)
			}
			if err != nil {
				return errors.Wrap(err, "device mutation failed")
			}
			return authStatusErr(res)
		},
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, errs.Unauthorized)
		}),
	)
}
