package loader

import (
	"strings"

	"assetgraph/internal/asset"
	"assetgraph/internal/change"
	"assetgraph/internal/node"
)

// Decision is the outcome of a revisit check.
type Decision struct {
	Revisit bool
	Reason  string
	Path    string
}

// Input is everything the revisit decision depends on.
type Input struct {
	// LoadPath is the configured load path after reconciliation; "" watches
	// the whole asset root.
	LoadPath string
	// ImportRoot is the asset path of LoadPath.
	ImportRoot string
	Batch      change.Batch
	// Prior is the last published output, nil when there is none.
	Prior    node.Groups
	IsSystem func(assetPath string) bool
}

// Decide reports whether the previous output must be recomputed.
//
// Containment is a plain prefix test on asset paths: a root "Assets/Foo"
// also contains "Assets/FooBar/x". Creations are only examined when the root
// is unscoped or nothing was published last time; removals and moves under
// the root always invalidate. Configuration artifacts are ignored only for
// an unscoped root.
func Decide(in Input) Decision {
	if in.Prior == nil {
		return Decision{Revisit: true, Reason: "no prior output"}
	}

	isSystem := in.IsSystem
	if isSystem == nil {
		isSystem = func(string) bool { return false }
	}

	if in.LoadPath == "" {
		for _, p := range in.Batch.Created {
			if !isSystem(p) {
				return Decision{Revisit: true, Reason: "created under unscoped root", Path: p}
			}
		}
	}

	previous := in.Prior[node.DefaultOutput]
	if len(previous) == 0 {
		for _, p := range in.Batch.Created {
			if !strings.HasPrefix(p, in.ImportRoot) {
				continue
			}
			if !importedFrom(previous, p) {
				return Decision{Revisit: true, Reason: "created", Path: p}
			}
		}
	}

	for _, set := range []struct {
		reason string
		paths  []string
	}{
		{"deleted", in.Batch.Deleted},
		{"moved to", in.Batch.MovedTo},
		{"moved from", in.Batch.MovedFrom},
	} {
		for _, p := range set.paths {
			if strings.HasPrefix(p, in.ImportRoot) {
				return Decision{Revisit: true, Reason: set.reason, Path: p}
			}
		}
	}

	return Decision{}
}

func importedFrom(refs []*asset.Reference, p string) bool {
	for _, r := range refs {
		if r != nil && r.ImportFrom == p {
			return true
		}
	}
	return false
}
