package loader

import "assetgraph/internal/target"

// Settings is the persisted configuration of a loader: the load path per
// target and the stable identifier of that directory per target. The two
// stores always change together.
type Settings struct {
	Paths *target.MultiTarget[string] `json:"load_path"`
	IDs   *target.MultiTarget[string] `json:"load_path_guid"`
}

func NewSettings(loadPath, id string) Settings {
	return Settings{
		Paths: target.New(loadPath),
		IDs:   target.New(id),
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s = s.ensure()
	return Settings{
		Paths: s.Paths.Clone(),
		IDs:   s.IDs.Clone(),
	}
}

// Targets lists every target with an override, after the default.
func (s Settings) Targets() []target.Target {
	s = s.ensure()
	return append([]target.Target{target.Default}, s.Paths.Targets()...)
}

func (s Settings) ensure() Settings {
	if s.Paths == nil {
		s.Paths = target.New("")
	}
	if s.IDs == nil {
		s.IDs = target.New("")
	}
	return s
}
