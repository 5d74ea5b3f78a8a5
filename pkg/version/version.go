package version

import "runtime/debug"

// version is set by build flags:
// -ldflags "-X go.minekube.com/pex/pkg/version.version=v1.2.3"
var version string

// String returns the version of the build, or "unknown".
func String() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "unknown"
}
