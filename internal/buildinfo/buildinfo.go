package buildinfo

import "runtime/debug"

// Version is the current mate-backport release. Release builds override it
// with -ldflags "-X github.com/thomas-vilte/matebackport/internal/buildinfo.Version=...".
var Version = "0.3.0"

// FullVersion returns the version with the v prefix
func FullVersion() string {
	return "v" + Version
}

// Revision returns the VCS revision the binary was built from, if known.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}
