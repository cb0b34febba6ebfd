package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", d.String())
	assert.Equal(t, "20260901", d.Compact())

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)

	_, err = ParseDate("01/09/2026")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2026-09-01")
	require.NoError(t, err)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-09-01"`, string(b))

	var parsed Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-09-30"`), &parsed))
	assert.Equal(t, "2026-09-30", parsed.String())

	assert.Error(t, json.Unmarshal([]byte(`"2026-13-30"`), &parsed))
	assert.Error(t, json.Unmarshal([]byte(`42`), &parsed))
}
