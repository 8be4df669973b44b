package catalog_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dealchef/internal/catalog"
)

func TestParseDate(t *testing.T) {
	d, err := catalog.ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, catalog.NewDate(2025, time.March, 9), d)

	d, err = catalog.ParseDate("2025-03-09T23:10:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", d.String())

	d, err = catalog.ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = catalog.ParseDate("9 maart")
	assert.Error(t, err)
}

func TestDate_JSONRoundTripsNull(t *testing.T) {
	var payload struct {
		From  catalog.Date `json:"from"`
		Until catalog.Date `json:"until"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"from":"2025-03-03","until":null}`), &payload))

	assert.Equal(t, "2025-03-03", payload.From.String())
	assert.True(t, payload.Until.IsZero())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2025-03-03","until":null}`, string(out))
}

func TestDate_Before(t *testing.T) {
	a := catalog.NewDate(2025, time.March, 3)
	b := catalog.NewDate(2025, time.March, 4)
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestDateOf_DropsClock(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	d := catalog.DateOf(time.Date(2025, time.March, 9, 23, 59, 0, 0, loc))
	assert.Equal(t, catalog.NewDate(2025, time.March, 9), d)
}
