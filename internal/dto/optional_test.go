package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalAbsentKey(t *testing.T) {
	var payload struct {
		Icon Optional[string] `json:"icon"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &payload))
	assert.False(t, payload.Icon.Set)
	assert.False(t, payload.Icon.Valid)
}

func TestOptionalExplicitNull(t *testing.T) {
	var payload struct {
		Icon Optional[string] `json:"icon"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"icon":null}`), &payload))
	assert.True(t, payload.Icon.Set)
	assert.False(t, payload.Icon.Valid)
	assert.Nil(t, payload.Icon.Ptr())
}

func TestOptionalValue(t *testing.T) {
	var payload struct {
		Icon Optional[string] `json:"icon"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"icon":"ph-calendar"}`), &payload))
	assert.True(t, payload.Icon.Set)
	assert.True(t, payload.Icon.Valid)
	assert.Equal(t, "ph-calendar", payload.Icon.Value)
	require.NotNil(t, payload.Icon.Ptr())
}

func TestOptionalSlice(t *testing.T) {
	var payload struct {
		Tags Optional[[]string] `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags":["gaming","social"]}`), &payload))
	assert.True(t, payload.Tags.Set)
	assert.Equal(t, []string{"gaming", "social"}, payload.Tags.Value)
}
