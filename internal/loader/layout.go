package loader

import (
	"path"
	"path/filepath"
	"strings"
)

// Layout locates the asset root of a project. Load paths are stored relative
// to the asset root; asset paths start with AssetsDir and are relative to
// the project root.
type Layout struct {
	ProjectRoot string
	AssetsDir   string
}

// DataPath is the absolute, slash-separated asset root.
func (l Layout) DataPath() string {
	return filepath.ToSlash(filepath.Join(l.ProjectRoot, l.AssetsDir))
}

// NormalizeLoadPath converts p to a path relative to the asset root. The
// asset root itself normalizes to "". Paths already relative pass through.
func (l Layout) NormalizeLoadPath(p string) string {
	if p == "" {
		return p
	}
	p = filepath.ToSlash(p)

	dataPath := l.DataPath()
	if p == dataPath || p == l.AssetsDir {
		return ""
	}
	if index := strings.Index(p, dataPath); index >= 0 {
		return strings.TrimPrefix(p[index+len(dataPath):], "/")
	}
	if l.AssetsDir != "" && strings.HasPrefix(p, l.AssetsDir+"/") {
		return strings.TrimPrefix(p[len(l.AssetsDir):], "/")
	}
	return p
}

// AssetPath returns the asset path of a load path; "" is the asset root.
func (l Layout) AssetPath(loadPath string) string {
	if loadPath == "" {
		return l.AssetsDir
	}
	return path.Join(l.AssetsDir, loadPath)
}

// AbsPath returns the on-disk location of a load path.
func (l Layout) AbsPath(loadPath string) string {
	return filepath.Join(l.ProjectRoot, l.AssetsDir, filepath.FromSlash(loadPath))
}

// AbsFromAssetPath returns the on-disk location of an asset path.
func (l Layout) AbsFromAssetPath(assetPath string) string {
	return filepath.Join(l.ProjectRoot, filepath.FromSlash(assetPath))
}
