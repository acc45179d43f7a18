package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout_NormalizeLoadPath(t *testing.T) {
	layout := Layout{ProjectRoot: "/proj", AssetsDir: "Assets"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty stays empty", "", ""},
		{"asset root itself", "/proj/Assets", ""},
		{"assets dir itself", "Assets", ""},
		{"absolute under root", "/proj/Assets/Scene/Level", "Scene/Level"},
		{"asset path", "Assets/Scene", "Scene"},
		{"already relative", "Scene/Level", "Scene/Level"},
		{"name sharing prefix", "AssetsExtra/Scene", "AssetsExtra/Scene"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, layout.NormalizeLoadPath(tt.in))
		})
	}
}

func TestLayout_Paths(t *testing.T) {
	layout := Layout{ProjectRoot: "/proj", AssetsDir: "Assets"}

	assert.Equal(t, "Assets", layout.AssetPath(""))
	assert.Equal(t, "Assets/Scene", layout.AssetPath("Scene"))
	assert.Equal(t, filepath.Join("/proj", "Assets", "Scene"), layout.AbsPath("Scene"))
	assert.Equal(t, filepath.Join("/proj", "Assets"), layout.AbsPath(""))
	assert.Equal(t, filepath.Join("/proj", "Assets", "a.png"), layout.AbsFromAssetPath("Assets/a.png"))
}
