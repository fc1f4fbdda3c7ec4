package remote

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/internal/errs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = db.Close() })

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewClient(conf.RemoteConfig{
		BaseURL:        ts.URL,
		TimeoutSeconds: 5,
		Platform:       "test",
	}, func() string { return "dev_local" })
}

func TestLoginSendsIdentityHeaders(t *testing.T) {
	var gotDevice, gotPlatform string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDevice = r.Header.Get("x-device-id")
		gotPlatform = r.Header.Get("x-platform")
		_, _ = w.Write([]byte(`{"token":"t1"}`))
	}))

	result, err := c.Login(context.Background(), "+998901234567", "pw", "dev_local")
	require.NoError(t, err)
	assert.Equal(t, "t1", result.Token)
	assert.Equal(t, "dev_local", gotDevice)
	assert.Equal(t, "test", gotPlatform)
}

func TestLoginTokenShapeVariants(t *testing.T) {
	bodies := []string{
		`{"accessToken":"t1"}`,
		`{"access_token":"t1"}`,
		`{"data":{"accessToken":"t1"}}`,
		`{"data":{"token":"t1"}}`,
	}
	for _, body := range bodies {
		b := body
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(b))
		}))
		result, err := c.Login(context.Background(), "+998901234567", "pw", "d")
		require.NoError(t, err, body)
		assert.Equal(t, "t1", result.Token, body)
	}
}

func TestLoginErrorMapping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	_, err := c.Login(context.Background(), "+998901234567", "bad", "d")
	assert.True(t, errors.Is(err, errs.BadCredentials))

	c = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	_, err = c.Login(context.Background(), "+998901234567", "pw", "d")
	assert.True(t, errors.Is(err, errs.RateLimited))

	c = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream down"}`))
	}))
	_, err = c.Login(context.Background(), "+998901234567", "pw", "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func unsignedJWT(t *testing.T, claims string) string {
	t.Helper()
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	return header + "." + enc.EncodeToString([]byte(claims)) + "."
}

func TestLoginBackfillsRoleFromClaims(t *testing.T) {
	token := unsignedJWT(t, `{"sub":"u7","role":"admin"}`)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"` + token + `"}`))
	}))

	result, err := c.Login(context.Background(), "+998901234567", "pw", "d")
	require.NoError(t, err)
	assert.Equal(t, "admin", result.Role)
	assert.Equal(t, "u7", result.UserID)
}

func TestMyDevicesAuthRejection(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		status := code
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, _, err := c.MyDevices(context.Background())
		assert.True(t, errors.Is(err, errs.Unauthorized), "HTTP %d", code)
	}
}

func TestMyDevicesSendsBearerToken(t *testing.T) {
	var auth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"devices":[{"id":"d1"}]}`))
	}))
	require.NoError(t, db.SetValue(conf.KeyAuthToken, "tok123"))

	list, found, err := c.MyDevices(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, list.Records, 1)
	assert.Equal(t, "Bearer tok123", auth)
}

func TestMutateRetriesTransientNotAuth(t *testing.T) {
	attempts := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	require.NoError(t, c.BlockDevice(context.Background(), "u1", "d1"))
	assert.Equal(t, 3, attempts)

	attempts = 0
	c2 := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	err := c2.UnblockDevice(context.Background(), "u1", "d1")
	assert.True(t, errors.Is(err, errs.Unauthorized))
	assert.Equal(t, 1, attempts, "authorization failures are final")
}
