// internal/asset/asset.go
package asset

import (
	"path"
	"strings"
)

// Kind is the coarse classification of an asset derived from its extension.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindTexture  Kind = "texture"
	KindModel    Kind = "model"
	KindAudio    Kind = "audio"
	KindScene    Kind = "scene"
	KindPrefab   Kind = "prefab"
	KindMaterial Kind = "material"
	KindScript   Kind = "script"
	KindText     Kind = "text"
	KindShader   Kind = "shader"
	KindConfig   Kind = "config"
	KindUnknown  Kind = "unknown"
)

var kindsByExt = map[string]Kind{
	".png":    KindTexture,
	".jpg":    KindTexture,
	".jpeg":   KindTexture,
	".tga":    KindTexture,
	".psd":    KindTexture,
	".fbx":    KindModel,
	".obj":    KindModel,
	".blend":  KindModel,
	".wav":    KindAudio,
	".mp3":    KindAudio,
	".ogg":    KindAudio,
	".unity":  KindScene,
	".prefab": KindPrefab,
	".mat":    KindMaterial,
	".cs":     KindScript,
	".js":     KindScript,
	".dll":    KindScript,
	".txt":    KindText,
	".json":   KindText,
	".xml":    KindText,
	".shader": KindShader,
}

// KindOf guesses the kind of the asset at p from its extension.
func KindOf(p string) Kind {
	if k, ok := kindsByExt[strings.ToLower(path.Ext(p))]; ok {
		return k
	}
	return KindUnknown
}

// Reference identifies one asset known to the content index. Two references
// are the same asset when their IDs match, whatever path they were found at.
type Reference struct {
	ID         string `json:"id"`
	ImportFrom string `json:"import_from"`
	Kind       Kind   `json:"kind"`
}

func (r *Reference) Equal(other *Reference) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.ID == other.ID
}

// Classification is what the content index knows about a path.
type Classification struct {
	IsConfigArtifact bool `json:"is_config_artifact"`
	IsFolder         bool `json:"is_folder"`
	IsLoadable       bool `json:"is_loadable"`
}
