package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, Json.Unmarshal([]byte(s), &m))
	return m
}

func TestExtractByPath(t *testing.T) {
	raw := decode(t, `{"data":{"devices":[{"id":"a"}],"count":1}}`)

	v, ok := ExtractByPath(raw, "data.count")
	assert.True(t, ok)
	assert.Equal(t, float64(1), v)

	_, ok = ExtractByPath(raw, "data.missing")
	assert.False(t, ok)

	_, ok = ExtractByPath(raw, "data.count.deeper")
	assert.False(t, ok)
}

func TestFirstArrayOrder(t *testing.T) {
	raw := decode(t, `{"sessions":[{"id":"s"}],"devices":[{"id":"d"}]}`)
	arr, found := FirstArray(raw, "devices", "sessions")
	require.True(t, found)
	require.Len(t, arr, 1)
	assert.Equal(t, "d", arr[0].(map[string]any)["id"])
}

func TestFirstArrayEmptyStillFound(t *testing.T) {
	raw := decode(t, `{"devices":[]}`)
	arr, found := FirstArray(raw, "devices", "sessions")
	assert.True(t, found)
	assert.Empty(t, arr)

	_, found = FirstArray(decode(t, `{"devices":"nope"}`), "devices")
	assert.False(t, found)
}

func TestFirstStringStringifiesNumbers(t *testing.T) {
	raw := decode(t, `{"id":42,"deviceId":""}`)
	assert.Equal(t, "42", FirstString(raw, "deviceId", "id"))
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{true, float64(1), "true", "Yes", " 1 ", "ON"} {
		assert.True(t, Truthy(v), "%v", v)
	}
	for _, v := range []any{false, float64(0), "false", "no", "", "banana", nil} {
		assert.False(t, Truthy(v), "%v", v)
	}
}

func TestEpochMillis(t *testing.T) {
	assert.Equal(t, int64(1700000000000), EpochMillis(float64(1700000000)))
	assert.Equal(t, int64(1700000000123), EpochMillis(float64(1700000000123)))
	assert.Equal(t, int64(1700000000000), EpochMillis("1700000000"))
	assert.Equal(t, int64(0), EpochMillis("not a time"))
	assert.NotZero(t, EpochMillis("2024-01-02T03:04:05Z"))
}

func TestMaskIP(t *testing.T) {
	assert.Equal(t, "10.*.*.4", MaskIP("10.1.2.4"))
	assert.Equal(t, "", MaskIP(""))
	assert.Equal(t, "badip", MaskIP("badip"))
}
