package target

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiTarget(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		m := New("Scene")
		assert.Equal(t, "Scene", m.Get("Android"))
		assert.Equal(t, "Scene", m.Get(Default))
		assert.False(t, m.HasOverride("Android"))
	})

	t.Run("override wins", func(t *testing.T) {
		m := New("Scene")
		m.Set("Android", "Mobile")
		assert.Equal(t, "Mobile", m.Get("Android"))
		assert.Equal(t, "Scene", m.Get("iOS"))
		assert.True(t, m.HasOverride("Android"))
	})

	t.Run("setting default target writes default slot", func(t *testing.T) {
		m := New("Scene")
		m.Set(Default, "Other")
		assert.Equal(t, "Other", m.DefaultValue)
		assert.Empty(t, m.Overrides)
		assert.False(t, m.HasOverride(Default))
	})

	t.Run("remove reverts to default", func(t *testing.T) {
		m := New("Scene")
		m.Set("Android", "Mobile")
		m.Remove("Android")
		assert.Equal(t, "Scene", m.Get("Android"))
	})

	t.Run("clone is independent", func(t *testing.T) {
		m := New("Scene")
		m.Set("Android", "Mobile")
		c := m.Clone()
		c.Set("Android", "Changed")
		c.Set(Default, "Root")
		assert.Equal(t, "Mobile", m.Get("Android"))
		assert.Equal(t, "Scene", m.DefaultValue)
	})

	t.Run("targets sorted", func(t *testing.T) {
		m := New("")
		m.Set("iOS", "a")
		m.Set("Android", "b")
		assert.Equal(t, []Target{"Android", "iOS"}, m.Targets())
	})

	t.Run("zero value usable", func(t *testing.T) {
		var m MultiTarget[string]
		m.Set("Android", "x")
		assert.Equal(t, "x", m.Get("Android"))
		assert.Equal(t, "", m.Get("iOS"))
	})
}

func TestMultiTargetJSON(t *testing.T) {
	m := New("Scene")
	m.Set("Android", "Mobile")

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded MultiTarget[string]
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Scene", decoded.Get(Default))
	assert.Equal(t, "Mobile", decoded.Get("Android"))
}
