package models

import "fmt"

// VersionState is the V8 version vendored in deps/v8. Patch is incremented in
// memory as patch-level bumps are written.
type VersionState struct {
	Major int
	Minor int
	Build int
	Patch int
}

func (v VersionState) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Patch)
}
