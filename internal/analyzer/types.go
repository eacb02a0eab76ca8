package analyzer

import "github.com/blackwell-systems/brewfile/internal/brew"

// Result is the difference between the configured and installed sets.
type Result struct {
	Missing []brew.PackageInfo // configured but not installed, configured order
	Extra   []brew.PackageInfo // installed but not configured, installed order
}

// InSync reports whether there is nothing to install or adopt.
func (r Result) InSync() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0
}

// TypeGroup is a run of packages sharing a type, used for display.
type TypeGroup struct {
	Type     brew.PackageType
	Packages []brew.PackageInfo
}
