package loader

import (
	"fmt"

	"assetgraph/internal/target"
)

// Lookup is the slice of the content index the reconciler needs.
type Lookup interface {
	IsFolder(assetPath string) bool
	PathToID(assetPath string) string
	IDToPath(id string) string
}

type RepairKind int

const (
	RepairNone RepairKind = iota
	// RepairPath adopted the path the stable identifier now resolves to.
	RepairPath
	// RepairID re-derived the identifier from a live path.
	RepairID
)

func (k RepairKind) String() string {
	switch k {
	case RepairPath:
		return "path"
	case RepairID:
		return "id"
	default:
		return "none"
	}
}

func (k RepairKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *RepairKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "path":
		*k = RepairPath
	case "id":
		*k = RepairID
	case "none", "":
		*k = RepairNone
	default:
		return fmt.Errorf("unknown repair kind %q", b)
	}
	return nil
}

// Repair describes what Reconcile changed.
type Repair struct {
	Kind RepairKind `json:"kind"`
	From string     `json:"from,omitempty"`
	To   string     `json:"to,omitempty"`
}

// Reconcile heals drift between the configured path and the stable
// identifier for t. Whichever side is still live wins; when both are broken
// nothing changes. s is never mutated: a corrected copy is returned when a
// repair was made.
func Reconcile(s Settings, t target.Target, layout Layout, look Lookup) (Settings, Repair) {
	s = s.ensure()

	configured := s.Paths.Get(t)
	loadPath := layout.AssetPath(configured)
	pathFromID := look.IDToPath(s.IDs.Get(t))

	if !look.IsFolder(loadPath) {
		if pathFromID == "" {
			return s, Repair{}
		}
		normalized := layout.NormalizeLoadPath(pathFromID)
		if normalized == configured {
			return s, Repair{}
		}
		fixed := s.Clone()
		slot := t
		if !fixed.Paths.HasOverride(t) {
			slot = target.Default
		}
		fixed.Paths.Set(slot, normalized)
		return fixed, Repair{Kind: RepairPath, From: configured, To: normalized}
	}

	if pathFromID != "" {
		return s, Repair{}
	}

	id := look.PathToID(loadPath)
	fixed := s.Clone()
	slot := t
	if !fixed.Paths.HasOverride(t) {
		slot = target.Default
	}
	previous := fixed.IDs.Get(slot)
	fixed.IDs.Set(slot, id)
	return fixed, Repair{Kind: RepairID, From: previous, To: id}
}
