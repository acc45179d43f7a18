package loader

import (
	"testing"

	"assetgraph/internal/asset"
	"assetgraph/internal/change"
	"assetgraph/internal/node"

	"github.com/stretchr/testify/assert"
)

func priorWith(paths ...string) node.Groups {
	refs := make([]*asset.Reference, 0, len(paths))
	for i, p := range paths {
		refs = append(refs, &asset.Reference{ID: string(rune('a' + i)), ImportFrom: p})
	}
	return node.Groups{node.DefaultOutput: refs}
}

func TestDecide(t *testing.T) {
	isSystem := asset.DefaultRules().IsSystemAsset

	tests := []struct {
		name     string
		loadPath string
		root     string
		batch    change.Batch
		prior    node.Groups
		want     bool
	}{
		{
			name:  "no prior output",
			root:  "Assets/Scene",
			prior: nil,
			want:  true,
		},
		{
			name:     "empty batch",
			loadPath: "Scene",
			root:     "Assets/Scene",
			prior:    priorWith("Assets/Scene/a.asset"),
			want:     false,
		},
		{
			name:     "deleted under root",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch:    change.Batch{Deleted: []string{"Assets/Scene/a.asset"}},
			prior:    priorWith("Assets/Scene/a.asset"),
			want:     true,
		},
		{
			name:     "moved to under root",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch:    change.Batch{MovedTo: []string{"Assets/Scene/b.asset"}},
			prior:    priorWith("Assets/Scene/a.asset"),
			want:     true,
		},
		{
			name:     "moved from under root",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch:    change.Batch{MovedFrom: []string{"Assets/Scene/a.asset"}},
			prior:    priorWith("Assets/Scene/a.asset"),
			want:     true,
		},
		{
			name:     "changes outside root",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch: change.Batch{
				Created:   []string{"Assets/Other/x.png"},
				Deleted:   []string{"Assets/Other/y.png"},
				MovedTo:   []string{"Assets/Other/z.png"},
				MovedFrom: []string{"Assets/Elsewhere/z.png"},
			},
			prior: priorWith("Assets/Scene/a.asset"),
			want:  false,
		},
		{
			name:     "prefix containment includes sibling sharing a name prefix",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch:    change.Batch{Deleted: []string{"Assets/SceneExtra/x.png"}},
			prior:    priorWith("Assets/Scene/a.asset"),
			want:     true,
		},
		{
			name:     "creation under populated root is treated as reimport",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch:    change.Batch{Created: []string{"Assets/Scene/new.png"}},
			prior:    priorWith("Assets/Scene/a.asset"),
			want:     false,
		},
		{
			name:     "creation under previously empty root",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch:    change.Batch{Created: []string{"Assets/Scene/new.png"}},
			prior:    node.Groups{node.DefaultOutput: nil},
			want:     true,
		},
		{
			name:     "prior without default slot counts as empty",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch:    change.Batch{Created: []string{"Assets/Scene/new.png"}},
			prior:    node.Groups{},
			want:     true,
		},
		{
			name:     "configuration artifact under previously empty root",
			loadPath: "Scene",
			root:     "Assets/Scene",
			batch:    change.Batch{Created: []string{"Assets/Scene/a.png.meta"}},
			prior:    node.Groups{node.DefaultOutput: nil},
			want:     true,
		},
		{
			name:  "unscoped root reacts to any creation",
			root:  "Assets",
			batch: change.Batch{Created: []string{"Packages/lib/x.png"}},
			prior: priorWith("Assets/a.asset"),
			want:  true,
		},
		{
			name:  "unscoped root ignores configuration artifacts",
			root:  "Assets",
			batch: change.Batch{Created: []string{"graph.config"}},
			prior: priorWith("Assets/a.asset"),
			want:  false,
		},
		{
			name:  "unscoped root still checks deletions",
			root:  "Assets",
			batch: change.Batch{Created: []string{"Assets/graph.config"}, Deleted: []string{"Assets/a.asset"}},
			prior: priorWith("Assets/a.asset"),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(Input{
				LoadPath:   tt.loadPath,
				ImportRoot: tt.root,
				Batch:      tt.batch,
				Prior:      tt.prior,
				IsSystem:   isSystem,
			})
			assert.Equal(t, tt.want, d.Revisit, d.Reason)
		})
	}
}

func TestDecide_ReportsTrigger(t *testing.T) {
	d := Decide(Input{
		LoadPath:   "Scene",
		ImportRoot: "Assets/Scene",
		Batch:      change.Batch{Deleted: []string{"Assets/Other/b", "Assets/Scene/a.asset"}},
		Prior:      priorWith("Assets/Scene/a.asset"),
	})

	assert.True(t, d.Revisit)
	assert.Equal(t, "deleted", d.Reason)
	assert.Equal(t, "Assets/Scene/a.asset", d.Path)
}
