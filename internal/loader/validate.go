package loader

import "os"

// Signals are the advisory results of validating a resolved load path.
type Signals struct {
	// Empty is raised when no load path is configured.
	Empty bool
	// Missing is raised when the resolved directory does not exist.
	Missing bool
}

// ValidateLoadPath runs both checks independently.
func ValidateLoadPath(loadPath, absPath string) Signals {
	return Signals{
		Empty:   loadPath == "",
		Missing: !dirExists(absPath),
	}
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
