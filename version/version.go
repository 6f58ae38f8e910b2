package version

// version is injected at build time via -ldflags.
var version = "development"

// Version returns the hoist build version.
func Version() string {
	return version
}
