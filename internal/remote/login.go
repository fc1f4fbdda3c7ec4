package remote

import (
	"context"
	"net/http"

	"github.com/ecomops/devicegate/internal/errs"
	"github.com/ecomops/devicegate/internal/model"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// Login authenticates with the backend and extracts the access token and role
// from whichever fields the deployment uses. A 401 is deliberately collapsed
// into a single credentials error; the server must not let callers tell "no
// such user" from "wrong password".
func (c *Client) Login(ctx context.Context, phone, password, deviceID string) (*model.LoginResult, error) {
	res, err := c.r().
		SetContext(ctx).
		SetBody(map[string]string{
			"phone_number": phone,
			"password":     password,
			"deviceId":     deviceID,
		}).
		Post("/auth/login")
	if err != nil {
		return nil, errors.Wrap(err, "login request failed")
	}
	switch res.StatusCode() {
	case http.StatusUnauthorized:
		return nil, errors.WithStack(errs.BadCredentials)
	case http.StatusTooManyRequests:
		return nil, errors.WithStack(errs.RateLimited)
	}
	if res.IsError() {
		return nil, serverErr(res)
	}

	raw := decodeBody(res.Body())
	result := &model.LoginResult{
		Token:  utils.FirstStringPath(raw, tokenPaths...),
		Role:   utils.FirstStringPath(raw, rolePaths...),
		UserID: utils.FirstStringPath(raw, userIDPaths...),
	}
	if result.Token == "" {
		return nil, errors.New("login response carried no access token")
	}
	fillFromClaims(result)
	return result, nil
}

// fillFromClaims backfills role and user id from the JWT claims when the
// response body didn't carry them. The token is not verified here; the server
// stays the authority, this is display metadata only.
func fillFromClaims(result *model.LoginResult) {
	if result.Role != "" && result.UserID != "" {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(result.Token, claims); err != nil {
		return
	}
	if result.Role == "" {
		result.Role = utils.FirstString(claims, "role")
	}
	if result.UserID == "" {
		result.UserID = utils.FirstString(claims, "sub", "id", "userId", "user_id")
	}
}
