package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assetgraph/internal/asset"

	"github.com/stretchr/testify/require"
)

// fakeIndex is an in-memory content index.
type fakeIndex struct {
	rules   asset.Rules
	folders map[string]string
	files   map[string]*asset.Reference
	order   []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		rules:   asset.DefaultRules(),
		folders: map[string]string{"Assets": "root-id"},
		files:   make(map[string]*asset.Reference),
	}
}

func (f *fakeIndex) addFolder(p, id string) {
	f.folders[p] = id
	f.order = append(f.order, p)
}

func (f *fakeIndex) addFile(p, id string) {
	f.files[p] = &asset.Reference{ID: id, ImportFrom: p, Kind: asset.KindOf(p)}
	f.order = append(f.order, p)
}

// addStale lists a path in enumeration without anything indexed for it.
func (f *fakeIndex) addStale(p string) {
	f.order = append(f.order, p)
}

func (f *fakeIndex) renameFolder(from, to string) {
	moved := func(p string) (string, bool) {
		if p == from {
			return to, true
		}
		if strings.HasPrefix(p, from+"/") {
			return to + p[len(from):], true
		}
		return p, false
	}
	folders := make(map[string]string, len(f.folders))
	for p, id := range f.folders {
		np, _ := moved(p)
		folders[np] = id
	}
	f.folders = folders
	files := make(map[string]*asset.Reference, len(f.files))
	for p, ref := range f.files {
		np, ok := moved(p)
		if ok {
			ref = &asset.Reference{ID: ref.ID, ImportFrom: np, Kind: ref.Kind}
		}
		files[np] = ref
	}
	f.files = files
	for i, p := range f.order {
		f.order[i], _ = moved(p)
	}
}

func (f *fakeIndex) IsFolder(p string) bool {
	_, ok := f.folders[p]
	return ok
}

func (f *fakeIndex) PathToID(p string) string {
	if id, ok := f.folders[p]; ok {
		return id
	}
	if ref, ok := f.files[p]; ok {
		return ref.ID
	}
	return ""
}

func (f *fakeIndex) IDToPath(id string) string {
	if id == "" {
		return ""
	}
	for p, fid := range f.folders {
		if fid == id {
			return p
		}
	}
	for p, ref := range f.files {
		if ref.ID == id {
			return p
		}
	}
	return ""
}

func (f *fakeIndex) EnumerateUnder(root string) ([]string, error) {
	var out []string
	for _, p := range f.order {
		if root == "" || strings.HasPrefix(p, root+"/") {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeIndex) Classify(p string) (asset.Classification, bool) {
	if f.IsFolder(p) {
		return f.rules.Classify(p, true), true
	}
	if _, ok := f.files[p]; ok {
		return f.rules.Classify(p, false), true
	}
	return asset.Classification{}, false
}

func (f *fakeIndex) Reference(p string) (*asset.Reference, bool) {
	ref, ok := f.files[p]
	return ref, ok
}

// testEnv builds a layout on a temp project with the given asset
// directories created on disk.
func testEnv(t *testing.T, idx *fakeIndex, dirs ...string) Env {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Assets"), 0755))
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0755))
	}
	return Env{
		Layout: Layout{ProjectRoot: root, AssetsDir: "Assets"},
		Index:  idx,
		Rules:  asset.DefaultRules(),
	}
}
