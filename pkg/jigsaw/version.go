package jigsaw

var (
	Version     = "v0.0.0-in-progress"
	UpstreamTag = "unknown"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// UpstreamVersion returns the pinned libjigsaw release. libjigsaw does not
// report its own version at run time.
func UpstreamVersion() string {
	return UpstreamTag
}
