package asset

import (
	"path"
	"strings"
)

// Rules decides which paths belong to the build system itself and which
// references may be loaded by a loader node.
type Rules struct {
	// SystemSuffixes mark configuration artifacts by file name suffix.
	SystemSuffixes []string
	// SystemDirs mark every path below a directory with one of these names.
	SystemDirs []string
	// IgnoredExtensions are never loaded.
	IgnoredExtensions []string
	// HiddenIsSystem treats dot-files as configuration artifacts.
	HiddenIsSystem bool
}

func DefaultRules() Rules {
	return Rules{
		SystemSuffixes:    []string{".meta", ".config", ".assetgraph"},
		SystemDirs:        []string{"AssetGraph"},
		IgnoredExtensions: []string{".cs", ".js", ".dll"},
		HiddenIsSystem:    true,
	}
}

// IsSystemAsset reports whether p is one of the build system's own
// configuration artifacts.
func (r Rules) IsSystemAsset(p string) bool {
	if p == "" {
		return false
	}
	base := path.Base(p)
	if r.HiddenIsSystem && strings.HasPrefix(base, ".") {
		return true
	}
	for _, suffix := range r.SystemSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	if len(r.SystemDirs) == 0 {
		return false
	}
	for _, part := range strings.Split(path.Dir(p), "/") {
		for _, dir := range r.SystemDirs {
			if part == dir {
				return true
			}
		}
	}
	return false
}

// IsLoadable reports whether ref may appear in a loader's output.
func (r Rules) IsLoadable(ref *Reference) bool {
	if ref == nil || ref.Kind == KindFolder || ref.Kind == KindConfig {
		return false
	}
	ext := strings.ToLower(path.Ext(ref.ImportFrom))
	for _, ignored := range r.IgnoredExtensions {
		if ext == strings.ToLower(ignored) {
			return false
		}
	}
	return true
}

// Classify builds the classification for a path the index knows about.
func (r Rules) Classify(p string, isFolder bool) Classification {
	c := Classification{
		IsConfigArtifact: r.IsSystemAsset(p),
		IsFolder:         isFolder,
	}
	if !c.IsConfigArtifact && !isFolder {
		c.IsLoadable = r.IsLoadable(&Reference{ImportFrom: p, Kind: KindOf(p)})
	}
	return c
}
