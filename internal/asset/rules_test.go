package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRules_IsSystemAsset(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"graph config", "graph.config", true},
		{"meta sidecar", "Assets/Scene/a.asset.meta", true},
		{"hidden config", "Assets/Scene/.meta-like-config", true},
		{"settings dir", "Assets/AssetGraph/SettingTemplate/x.asset", true},
		{"plain asset", "Assets/Scene/a.asset", false},
		{"dir name only as file", "Assets/AssetGraph", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.IsSystemAsset(tt.path))
		})
	}
}

func TestRules_IsLoadable(t *testing.T) {
	rules := DefaultRules()

	assert.True(t, rules.IsLoadable(&Reference{ID: "1", ImportFrom: "Assets/a.png", Kind: KindTexture}))
	assert.False(t, rules.IsLoadable(&Reference{ID: "2", ImportFrom: "Assets/Player.cs", Kind: KindScript}))
	assert.False(t, rules.IsLoadable(&Reference{ID: "3", ImportFrom: "Assets/Sub", Kind: KindFolder}))
	assert.False(t, rules.IsLoadable(nil))
}

func TestRules_Classify(t *testing.T) {
	rules := DefaultRules()

	c := rules.Classify("Assets/Scene/a.asset", false)
	assert.Equal(t, Classification{IsLoadable: true}, c)

	c = rules.Classify("Assets/Scene/sub", true)
	assert.True(t, c.IsFolder)
	assert.False(t, c.IsLoadable)

	c = rules.Classify("Assets/Scene/a.asset.meta", false)
	assert.True(t, c.IsConfigArtifact)
	assert.False(t, c.IsLoadable)
}

func TestReference_Equal(t *testing.T) {
	a := &Reference{ID: "x", ImportFrom: "Assets/a.png"}
	b := &Reference{ID: "x", ImportFrom: "Assets/renamed.png"}
	c := &Reference{ID: "y", ImportFrom: "Assets/a.png"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTexture, KindOf("Assets/A.PNG"))
	assert.Equal(t, KindUnknown, KindOf("Assets/a.asset"))
}
